// SPDX-License-Identifier: MPL-2.0

// Package launcher implements the setup-and-dispatch flow: locate the
// project from the executable's own path, make sure its environment is
// provisioned, run the target inside it with the arguments untouched and
// report the target's exit status.
package launcher
