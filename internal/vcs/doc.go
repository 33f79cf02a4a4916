// Package vcs answers the launcher's three version-control questions: is a
// git client discoverable, is the install root actually a clone, and what
// revision is currently checked out. The revision feeds the staleness check;
// the first two are fatal preconditions with remediation instructions.
package vcs
