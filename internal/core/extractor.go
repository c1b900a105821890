package core

import "context"

// DocumentExtractor turns an uploaded file into a single UTF-8 text blob.
// The file name's final extension picks the parsing strategy.
type DocumentExtractor interface {
	Load(ctx context.Context, filename string, data []byte) (string, error)
}
