// SPDX-License-Identifier: MPL-2.0

// Package cmd holds the command trees of the two binaries: the cybermorph
// launcher, which owns no flags and forwards every argument to its target,
// and cybermorph-env, which manages the launcher's environment.
package cmd
