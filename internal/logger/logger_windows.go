//go:build windows
// +build windows

package logger

import (
	"os"

	"golang.org/x/sys/windows"
)

const SupportsColorEscapes = true

func GetTerminalInfo(file *os.File) (info TerminalInfo) {
	handle := windows.Handle(file.Fd())

	// Is this file descriptor a terminal?
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return
	}
	info.IsTTY = true

	// Ask the console to interpret ANSI escapes itself. Consoles that predate
	// virtual terminal support reject this and get uncolored output instead.
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 ||
		windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil {
		info.UseColorEscapes = !hasNoColorEnvironmentVariable()
	}

	// Get the width of the window
	var buffer windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(handle, &buffer); err == nil {
		info.Width = int(buffer.Size.X) - 1
		info.Height = int(buffer.Size.Y) - 1
	}

	return
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
