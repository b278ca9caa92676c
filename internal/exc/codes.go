// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

const (
	CodeUnknownFatal                  = "E0000"
	CodeFileNotFound                  = "E0001"
	CodeUnsuportedFileSystemOperation = "E0002"
	CodePermissionDenied              = "E0003"
	CodeUnsupportedFileFormat         = "E0004"
	CodeUnexpectedEOF                 = "E0005"
	CodeUnexpectedToken               = "E0006"
	CodeInvalidLiteral                = "E0007"
	CodeClauseMismatch                = "E0008"
	CodeMissingModule                 = "E0009"

	// Recoverable diagnostics: structurally valid constructs whose payload
	// fails a closed-set semantic check known at parse time.
	CodeBadDeprecatedTarget = "W0001"
	CodeBadDeprecatedFlag   = "W0002"
	CodeBadTypeGuard        = "W0003"
)

const (
	CodeEOF = "_EOF_"
)
