package ingest

import (
	"context"
	"errors"
	"sync"

	"ingest-backend/internal/convert"
	"ingest-backend/internal/shared/storage/blob"
)

type putCall struct {
	Key  string
	Data []byte
	Opts blob.PutOptions
}

type fakeStore struct {
	mu    sync.Mutex
	calls []putCall
	err   error
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, opts blob.PutOptions) (blob.Descriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, putCall{Key: key, Data: append([]byte(nil), data...), Opts: opts})
	if f.err != nil {
		return blob.Descriptor{}, f.err
	}
	ct := opts.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return blob.Describe("https://blobs.example.com", key, ct), nil
}

func (f *fakeStore) Calls() []putCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]putCall(nil), f.calls...)
}

type fakeConverter struct {
	result convert.Result
	err    error
	docs   []convert.Document
}

func (f *fakeConverter) Convert(_ context.Context, doc convert.Document) (convert.Result, error) {
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return convert.Result{}, f.err
	}
	res := f.result
	if res.Filename == "" {
		res.Filename = convert.MarkdownFilename(doc.Filename)
	}
	return res, nil
}

var errStoreDown = errors.New("store down")
