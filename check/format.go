// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package check

import "github.com/muesli/termenv"

var (
	headerStyle  = termenv.Style{}.Bold().Foreground(termenv.ANSIBlue)
	warnStyle    = termenv.Style{}.Foreground(termenv.ANSIYellow)
	successStyle = termenv.Style{}.Foreground(termenv.ANSIGreen)
	failureStyle = termenv.Style{}.Foreground(termenv.ANSIRed)
	noteStyle    = termenv.Style{}.Faint()
)

// Header returns the message decorated as a section header.
func Header(msg string) string {
	return headerStyle.Styled("==> " + msg)
}

// Warn returns the message decorated as a warning.
func Warn(msg string) string {
	return warnStyle.Styled("! " + msg)
}

// Success returns the message decorated as a success notice.
func Success(msg string) string {
	return successStyle.Styled("✔ " + msg)
}

// Failure returns the message decorated as a failure notice.
func Failure(msg string) string {
	return failureStyle.Styled("× " + msg)
}

// Note returns the message decorated as auxiliary (dimmed) information.
func Note(msg string) string {
	return noteStyle.Styled(msg)
}
