package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yuanzhixiang/substrate/lib/buffer"
	"github.com/yuanzhixiang/substrate/lib/counters"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("substrate")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// SetupCountersFileFlags adds the counters file flags to a command
func SetupCountersFileFlags(cmd *cobra.Command) {
	key := "metadata-file"
	cmd.PersistentFlags().String(key, "counters.meta", WrapString("Path of the counters metadata file"))

	key = "values-file"
	cmd.PersistentFlags().String(key, "counters.values", WrapString("Path of the counters values file"))

	key = "counters"
	cmd.PersistentFlags().Int(key, 1024, WrapString("Number of counter slots when creating new files"))
}

// OpenCountersReader maps the configured counters files read-only style
// (the mapping itself is shared and writable, but only a Reader is handed
// out) and returns a Reader over them plus the mappings for cleanup.
func OpenCountersReader() (*counters.Reader, []*buffer.MappedFile, error) {
	metaFile, err := buffer.MapExisting(viper.GetString("metadata-file"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map metadata file: %v", err)
	}

	valuesFile, err := buffer.MapExisting(viper.GetString("values-file"))
	if err != nil {
		_ = metaFile.Close()
		return nil, nil, fmt.Errorf("failed to map values file: %v", err)
	}

	reader, err := counters.NewReader(&metaFile.Buffer, &valuesFile.Buffer)
	if err != nil {
		_ = metaFile.Close()
		_ = valuesFile.Close()
		return nil, nil, fmt.Errorf("failed to create counters reader: %v", err)
	}

	return reader, []*buffer.MappedFile{metaFile, valuesFile}, nil
}

// CreateCountersManager creates the configured counters files and returns a
// Manager over them plus the mappings for cleanup. Existing files are an
// error so a running writer is never clobbered.
func CreateCountersManager() (*counters.Manager, []*buffer.MappedFile, error) {
	numCounters := viper.GetInt("counters")

	metaFile, err := buffer.MapNew(viper.GetString("metadata-file"), numCounters*counters.MetadataLength)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metadata file: %v", err)
	}

	valuesFile, err := buffer.MapNew(viper.GetString("values-file"), numCounters*counters.CounterLength)
	if err != nil {
		_ = metaFile.Close()
		_ = os.Remove(metaFile.Path())
		return nil, nil, fmt.Errorf("failed to create values file: %v", err)
	}

	manager, err := counters.NewDefaultManager(&metaFile.Buffer, &valuesFile.Buffer)
	if err != nil {
		_ = metaFile.Close()
		_ = valuesFile.Close()
		return nil, nil, fmt.Errorf("failed to create counters manager: %v", err)
	}

	return manager, []*buffer.MappedFile{metaFile, valuesFile}, nil
}

// CloseMappings closes all mappings, keeping the first error
func CloseMappings(mappings []*buffer.MappedFile) error {
	var firstErr error
	for _, m := range mappings {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
