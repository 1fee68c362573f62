package errors

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// CLIErrorHandler handles errors for the command line
type CLIErrorHandler struct {
	Verbose bool
	logger  *slog.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(logger *slog.Logger, verbose bool) *CLIErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorHandler{
		Verbose: verbose,
		logger:  logger,
	}
}

// HandleError logs err and returns an error carrying the formatted message
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	attrs := []any{"code", appErr.Code, "severity", appErr.Severity}
	if appErr.Cause != nil {
		attrs = append(attrs, "cause", appErr.Cause)
	}
	h.logger.Debug(appErr.Message, attrs...)

	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.Verbose && appErr.Details != "" {
		message = fmt.Sprintf("%s (%s)", message, appErr.Details)
	}
	if h.Verbose && appErr.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("CRITICAL: %s", message)
	case SeverityError:
		return fmt.Sprintf("ERROR: %s", message)
	case SeverityWarning:
		return fmt.Sprintf("WARNING: %s", message)
	case SeverityInfo:
		return fmt.Sprintf("INFO: %s", message)
	default:
		return message
	}
}

// TUIErrorHandler handles errors for the terminal editor
type TUIErrorHandler struct {
	ShowDetails bool
	logger      *slog.Logger
}

// NewTUIErrorHandler creates a new TUI error handler
func NewTUIErrorHandler(logger *slog.Logger, showDetails bool) *TUIErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TUIErrorHandler{
		ShowDetails: showDetails,
		logger:      logger,
	}
}

// HandleError logs err and returns it as an AppError
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	h.logger.Warn(appErr.Message, "code", appErr.Code, "category", appErr.Category)
	return appErr
}

// FormatError formats an error for the status line
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Details != "" {
		message = fmt.Sprintf("%s - %s", message, appErr.Details)
	}
	return message
}

// Style returns the status line style for err based on its severity
func (h *TUIErrorHandler) Style(err error) lipgloss.Style {
	appErr := GetAppError(err)

	var color string
	switch appErr.Severity {
	case SeverityCritical:
		color = "#ff0000"
	case SeverityError:
		color = "#ff6b6b"
	case SeverityWarning:
		color = "#feca57"
	case SeverityInfo:
		color = "#48cae4"
	default:
		color = "#ff6b6b"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
