// Package ingest runs the batch pipeline that populates a remote vector
// store: per-file conversion, sequential upload, failure-tolerant
// accounting.
package ingest

import (
	"context"
	"fmt"

	"ragcli/internal/openai"
)

// Mode selects whether the batch creates a fresh store or extends one.
type Mode int

const (
	CreateStore Mode = iota
	ExtendStore
)

// StoreClient is the remote surface the pipeline needs.
type StoreClient interface {
	CreateVectorStore(ctx context.Context, name string) (string, error)
	UploadFile(ctx context.Context, storeID, path string) (string, error)
}

// Converter prepares one file for upload, returning the path to send and a
// cleanup for any temporary output. Invoked for every file; non-converting
// files come back unchanged.
type Converter func(path string) (uploadPath string, cleanup func(), err error)

// FileFailure is one file the batch could not ingest, with the reason kept
// for the user (who can re-run extend for just the failed files).
type FileFailure struct {
	Path   string
	Reason string
}

// Result is the full accounting of a batch. Partial failure is a
// first-class outcome here, not an error: Ingest only returns an error when
// the batch as a whole could not start (store creation failed).
type Result struct {
	StoreID   string
	Succeeded []string
	Failed    []FileFailure
}

// Pipeline uploads files one at a time, in order. Sequential on purpose:
// simpler partial-failure accounting and it respects service rate limits.
type Pipeline struct {
	Client  StoreClient
	Convert Converter

	// Report, when set, is called after each file with its outcome.
	Report func(path string, err error)
}

// Ingest runs the batch. In CreateStore mode a new remote store named name
// is created first and storeID is ignored; in ExtendStore mode storeID must
// be an existing store. A single file failing conversion or upload is
// recorded and the loop continues; the batch never aborts early on a
// per-file failure. The caller decides what zero successes means.
func (p *Pipeline) Ingest(ctx context.Context, storeID string, mode Mode, name string, paths []string) (*Result, error) {
	if mode == CreateStore {
		id, err := p.Client.CreateVectorStore(ctx, name)
		if err != nil {
			return nil, err
		}
		storeID = id
	}

	res := &Result{StoreID: storeID}
	for _, path := range paths {
		err := p.ingestOne(ctx, storeID, path)
		if p.Report != nil {
			p.Report(path, err)
		}
		if err != nil {
			reason := err.Error()
			if openai.IsBadRequest(err) {
				reason = "rejected by service: " + reason
			}
			res.Failed = append(res.Failed, FileFailure{Path: path, Reason: reason})
			continue
		}
		res.Succeeded = append(res.Succeeded, path)
	}
	return res, nil
}

// ingestOne converts and uploads a single file. The conversion temp
// location is released on every exit path.
func (p *Pipeline) ingestOne(ctx context.Context, storeID, path string) error {
	uploadPath := path
	if p.Convert != nil {
		converted, cleanup, err := p.Convert(path)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		defer cleanup()
		uploadPath = converted
	}

	if _, err := p.Client.UploadFile(ctx, storeID, uploadPath); err != nil {
		return err
	}
	return nil
}
