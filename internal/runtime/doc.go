// SPDX-License-Identifier: MPL-2.0

// Package runtime runs child processes for the cybermorph launcher.
//
// A Runner executes an Invocation (path, argument vector, explicit environment,
// standard streams) and reports the child's ExitCode. Arguments are handed to
// the OS unchanged, so argument boundaries survive no matter what characters
// they contain. Children killed by a signal report 128+signal; children that
// cannot be started report 127 (not found), 126 (not executable) or 1.
//
// The environment helpers (SetEnv, UnsetEnv, PrependPath, LookPathIn) work on
// explicit environ slices instead of the process environment, which lets an
// activated environment be built and searched without mutating global state.
package runtime
