package files

import (
	"context"
	"fmt"

	"github.com/simonhull/audiometa"
)

// ProbeDuration reads an uploaded audio file's duration in milliseconds.
// A file that parses but carries no duration yields zero without error;
// callers treat the probe as best-effort.
func ProbeDuration(ctx context.Context, audioPath string) (int64, error) {
	file, err := audiometa.OpenContext(ctx, audioPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Defer close, nothing we can do about errors here

	return file.Audio.Duration.Milliseconds(), nil
}
