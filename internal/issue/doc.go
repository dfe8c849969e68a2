// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors and the help catalog.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints; Issue entries hold longer Markdown help rendered to the
// terminal with glamour.
package issue
