// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error types: ActionableError carries
// operation/resource context plus fix suggestions, and the Issue catalog maps
// well-known failure conditions to rendered markdown help cards.
package issue
