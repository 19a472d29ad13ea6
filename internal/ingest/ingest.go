// Package ingest accepts uploaded documents for a session: it stores the
// raw file, extracts its outline, and stores the outline as a JSON artifact
// alongside the source. A document that fails extraction is skipped without
// failing the batch.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/docsift/docsift/internal/artifact"
	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/outline"
	"github.com/docsift/docsift/internal/relevance"
)

// Role says which upload slot a document belongs to.
type Role string

const (
	RoleCurrent Role = "current"
	RolePast    Role = "past"
)

// Stored describes one successfully ingested document.
type Stored struct {
	Name       string `json:"name"`
	Key        string `json:"key"`
	OutlineKey string `json:"outline_key"`
	Title      string `json:"title"`
}

// Skipped describes a document that could not be ingested.
type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the outcome of one upload batch.
type Result struct {
	Stored  []Stored  `json:"stored"`
	Skipped []Skipped `json:"skipped"`
}

// Ingestor stores documents and their extracted outlines.
type Ingestor struct {
	store artifact.Store
	log   *slog.Logger
}

func New(store artifact.Store, log *slog.Logger) *Ingestor {
	return &Ingestor{store: store, log: log}
}

// Store exposes the underlying artifact store.
func (in *Ingestor) Store() artifact.Store { return in.store }

var nameCleaner = regexp.MustCompile(`[^a-z0-9._-]+`)

// NormalizeName lowercases a filename and collapses anything outside
// [a-z0-9._-] to underscores, so names are safe as artifact keys.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = nameCleaner.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "document"
	}
	return name
}

// Add ingests one document into the session. The raw bytes are stored under
// <role>/<name> and the extracted outline under outlines/<stem>.json.
func (in *Ingestor) Add(ctx context.Context, sessionID string, role Role, filename string, r io.Reader) (*Stored, error) {
	name := NormalizeName(filename)
	if !extract.IsSupportedExtension(name) {
		return nil, fmt.Errorf("unsupported document type: %s", filename)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload: %s", filename)
	}

	key := string(role) + "/" + name
	if err := in.store.Put(ctx, sessionID, key, bytes.NewReader(data)); err != nil {
		return nil, err
	}

	ex, err := extract.ForFile(name)
	if err != nil {
		return nil, err
	}
	doc, err := ex.Extract(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}

	outlineKey := "outlines/" + extract.Stem(name) + ".json"
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode outline: %w", err)
	}
	if err := in.store.Put(ctx, sessionID, outlineKey, bytes.NewReader(payload)); err != nil {
		return nil, err
	}

	in.log.Info("document ingested",
		"session", sessionID, "name", name, "role", role,
		"headings", len(doc.Outline), "pages", len(doc.FullText))
	return &Stored{Name: name, Key: key, OutlineKey: outlineKey, Title: doc.Title}, nil
}

// Upload is one named document offered to AddBatch.
type Upload struct {
	Name string
	Body io.Reader
}

// AddBatch ingests documents in order, isolating per-document failures into
// the skipped list.
func (in *Ingestor) AddBatch(ctx context.Context, sessionID string, role Role, uploads []Upload) *Result {
	res := &Result{}
	for _, u := range uploads {
		stored, err := in.Add(ctx, sessionID, role, u.Name, u.Body)
		if err != nil {
			in.log.Warn("document skipped", "session", sessionID, "name", u.Name, "error", err)
			res.Skipped = append(res.Skipped, Skipped{Name: u.Name, Reason: err.Error()})
			continue
		}
		res.Stored = append(res.Stored, *stored)
	}
	return res
}

// Documents loads every stored outline for a session as relevance inputs.
func (in *Ingestor) Documents(ctx context.Context, sessionID string) ([]relevance.Document, error) {
	keys, err := in.store.List(ctx, sessionID, "outlines/")
	if err != nil {
		return nil, err
	}
	docs := make([]relevance.Document, 0, len(keys))
	for _, key := range keys {
		doc, err := in.loadOutline(ctx, sessionID, key)
		if err != nil {
			in.log.Warn("unreadable outline artifact", "session", sessionID, "key", key, "error", err)
			continue
		}
		stem := strings.TrimSuffix(strings.TrimPrefix(key, "outlines/"), ".json")
		docs = append(docs, relevance.Document{
			Name:    stem,
			Path:    in.sourceKey(ctx, sessionID, stem),
			Outline: doc,
		})
	}
	return docs, nil
}

// Texts returns the full text of every session document, one entry per
// document, for insight and podcast generation.
func (in *Ingestor) Texts(ctx context.Context, sessionID string) ([]string, error) {
	docs, err := in.Documents(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		texts = append(texts, strings.Join(d.Outline.FullText, "\n"))
	}
	return texts, nil
}

func (in *Ingestor) loadOutline(ctx context.Context, sessionID, key string) (*outline.Document, error) {
	r, err := in.store.Get(ctx, sessionID, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var doc outline.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	return &doc, nil
}

// sourceKey finds the stored source file matching an outline stem,
// preferring the current slot.
func (in *Ingestor) sourceKey(ctx context.Context, sessionID, stem string) string {
	for _, role := range []Role{RoleCurrent, RolePast} {
		keys, err := in.store.List(ctx, sessionID, string(role)+"/")
		if err != nil {
			continue
		}
		for _, key := range keys {
			base := strings.TrimPrefix(key, string(role)+"/")
			if extract.Stem(base) == stem {
				return key
			}
		}
	}
	return ""
}
