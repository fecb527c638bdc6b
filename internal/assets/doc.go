// SPDX-License-Identifier: MPL-2.0

// Package assets downloads model weights from the Hugging Face hub into
// the workspace models directory. Downloads are idempotent and resume
// from scratch on retry; partial files never land under the final name.
package assets
