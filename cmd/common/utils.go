package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Console prints user-facing messages for interactive commands. Structured
// logs go through zap instead.
type Console struct {
	out        io.Writer
	ShowEmojis bool
	SilentMode bool
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out:        out,
		ShowEmojis: true,
	}
}

// FromFlags applies -silent and -no-emojis
func (c *Console) FromFlags(flags *CommonFlags) *Console {
	c.SilentMode = *flags.Silent
	c.ShowEmojis = !*flags.NoEmojis
	return c
}

func (c *Console) prefix(emoji, plain string) string {
	if c.ShowEmojis {
		return emoji
	}
	return plain
}

// Header prints a formatted header
func (c *Console) Header(title string) {
	if c.SilentMode {
		return
	}
	fmt.Fprintf(c.out, "\n%s %s\n", c.prefix("🎯", "***"), strings.ToUpper(title))
	fmt.Fprintf(c.out, "%s\n", strings.Repeat("=", len(title)+5))
}

func (c *Console) Info(format string, args ...interface{}) {
	if c.SilentMode {
		return
	}
	fmt.Fprintf(c.out, "%s  %s\n", c.prefix("ℹ️", "[INFO]"), fmt.Sprintf(format, args...))
}

func (c *Console) Success(format string, args ...interface{}) {
	if c.SilentMode {
		return
	}
	fmt.Fprintf(c.out, "%s %s\n", c.prefix("✅", "[OK]"), fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...interface{}) {
	fmt.Fprintf(c.out, "%s  %s\n", c.prefix("⚠️", "[WARN]"), fmt.Sprintf(format, args...))
}

// Error is printed even in silent mode
func (c *Console) Error(format string, args ...interface{}) {
	fmt.Fprintf(c.out, "%s %s\n", c.prefix("❌", "[ERROR]"), fmt.Sprintf(format, args...))
}

// LoadEnvFile loads variables from path with godotenv. A missing file is
// not an error; existing environment variables win.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}

	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("could not load environment file %s: %w", path, err)
	}
	return true, nil
}
