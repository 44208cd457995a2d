package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// fakeUploader records uploads and can be told to fail on the n-th call
type fakeUploader struct {
	mu        sync.Mutex
	failOn    int
	calls     int
	folders   []string
	destroyed []string
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, folder, _ string) (*UploadedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failOn > 0 && f.calls == f.failOn {
		return nil, errors.New("asset host unavailable")
	}
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	f.folders = append(f.folders, folder)
	id := fmt.Sprintf("%s/img-%d", folder, f.calls)
	return &UploadedImage{URL: "https://cdn.example.com/" + id, PublicID: id}, nil
}

func (f *fakeUploader) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.destroyed = append(f.destroyed, publicID)
	return nil
}
