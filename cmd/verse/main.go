// Command verse shows a bilingual verse of the day and manages the stored
// collection, either in the terminal or over HTTP (verse serve).
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

// Stamped at link time:
//
//	go build -ldflags "-X main.Version=$(git describe --tags) -X main.Commit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%FT%TZ)" ./cmd/verse
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitRejected = 2 // a document or password was refused
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "verse: %v\n", err)

	if domain.IsValidation(err) || domain.IsUnauthorized(err) {
		return exitRejected
	}

	return exitFailure
}
