package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jaki95/cpceek/internal/domain"
)

const (
	// GamesMarker identifies a line holding a game resource path.
	GamesMarker = "/cpc/games/"
	// Terminator ends the descriptive block of a record.
	Terminator = "----------"
)

// SkipFunc reports whether the file for a record is already satisfied locally.
type SkipFunc func(fileName string) bool

type parseState int

const (
	stateIdle parseState = iota
	stateReading
)

type lineKind int

const (
	lineOther lineKind = iota
	lineMarker
	lineTerminator
	lineField
)

// Parser turns the text index into a Catalog.
type Parser struct {
	skip   SkipFunc
	logger *slog.Logger
}

type Option func(*Parser)

// WithSkip drops records whose file the predicate reports as satisfied.
func WithSkip(skip SkipFunc) Option {
	return func(p *Parser) { p.skip = skip }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func classify(line string, state parseState) lineKind {
	switch state {
	case stateIdle:
		if strings.Contains(line, GamesMarker) {
			return lineMarker
		}
	case stateReading:
		if strings.Contains(line, Terminator) {
			return lineTerminator
		}
		if strings.Contains(line, ":") {
			return lineField
		}
	}
	return lineOther
}

// Parse reads the index line by line in a single forward pass. Only records
// closed by a terminator line appear in the result.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*Catalog, error) {
	cat := New()

	state := stateIdle
	var current *domain.GameRecord
	var currentKey string
	lineNo := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimRight(scanner.Text(), "\r")

		switch classify(line, state) {
		case lineMarker:
			name := domain.FileNameOf(line)
			if name == "" {
				p.logger.Warn("ignoring games entry without a file name", "line", lineNo, "path", line)
				continue
			}
			if p.skip != nil && p.skip(name) {
				p.logger.Debug("already downloaded, skipping record", "file", name)
				continue
			}
			current = domain.NewGameRecord(line)
			currentKey = name
			state = stateReading

		case lineTerminator:
			if cat.Put(currentKey, current) {
				p.logger.Warn("duplicate file name in index, keeping the later record",
					"file", currentKey, "path", current.ResourcePath, "line", lineNo)
			}
			current = nil
			currentKey = ""
			state = stateIdle

		case lineField:
			key, value, _ := strings.Cut(line, ":")
			applyField(current, strings.TrimSpace(key), strings.TrimSpace(value))

		case lineOther:
			if state == stateReading && strings.TrimSpace(line) != "" {
				p.logger.Debug("ignoring malformed index line", "line", lineNo, "text", line)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	if state == stateReading {
		p.logger.Warn("index ended inside a record, dropping it", "file", currentKey, "path", current.ResourcePath)
	}

	return cat, nil
}
