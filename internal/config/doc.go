// Package config captures the launcher's environment-derived settings in an
// explicit structure populated once at startup.
//
// The Config type records the install root, CI detection, the pub cache
// override, extra tool VM arguments and the pub environment tag. Recognized
// environment variables are enumerated here instead of being consulted ad hoc
// throughout the code.
package config
