// Package python finds python interpreters.
//
// Given a request (a version, an implementation, a path or an executable
// name) it consults an ordered set of sources: the active virtual
// environment, a discovered virtual environment, managed toolchains, the
// search path and the Windows py launcher. Enumeration is lazy and stops
// at the first match, so a hit in an early source never pays for a later
// one, and candidates that a cheap prefilter can rule out are never
// queried with a subprocess.
package python
