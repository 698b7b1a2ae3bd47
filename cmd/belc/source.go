package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/graphbio/bel/internal/storage"
	"github.com/graphbio/bel/pkg/compile"
)

// loadDocuments expands a source argument into named compile inputs.
// A directory yields every .bel file under it; an s3:// location
// yields the named object, or every .bel object under the prefix when
// the key ends with a slash.
func loadDocuments(ctx context.Context, source string) ([]compile.Document, error) {
	if strings.HasPrefix(source, "s3://") {
		return loadS3Documents(ctx, source)
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadDirDocuments(source)
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	return []compile.Document{{Name: filepath.Base(source), Text: string(raw)}}, nil
}

func loadDirDocuments(root string) ([]compile.Document, error) {
	var documents []compile.Document
	err := filepath.WalkDir(root, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(filePath), ".bel") {
			return nil
		}
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}
		name, relErr := filepath.Rel(root, filePath)
		if relErr != nil {
			name = filePath
		}
		documents = append(documents, compile.Document{Name: name, Text: string(raw)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("no .bel documents under %s", root)
	}
	return documents, nil
}

func loadS3Documents(ctx context.Context, location string) ([]compile.Document, error) {
	bucket, key, err := parseS3(location)
	if err != nil {
		return nil, err
	}

	client := storage.NewClient(ctx)
	if client == nil {
		return nil, errors.New("s3 sources need AWS_REGION, AWS_ACCESS_KEY, AWS_SECRET_KEY, and AWS_BUCKET configured")
	}

	if key != "" && !strings.HasSuffix(key, "/") {
		raw, err := client.Fetch(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		return []compile.Document{{Name: key, Text: string(raw)}}, nil
	}

	keys, err := client.ListPrefix(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	var documents []compile.Document
	for _, objectKey := range keys {
		if !strings.EqualFold(path.Ext(objectKey), ".bel") {
			continue
		}
		raw, err := client.Fetch(ctx, bucket, objectKey)
		if err != nil {
			return nil, err
		}
		documents = append(documents, compile.Document{Name: objectKey, Text: string(raw)})
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("no .bel documents under %s", location)
	}
	return documents, nil
}

// parseS3 splits s3://bucket/key into its parts. An empty key names
// the whole bucket as a prefix.
func parseS3(location string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(location, "s3://")
	bucket, key, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid s3 location %q", location)
	}
	return bucket, key, nil
}
