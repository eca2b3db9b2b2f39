package immich

import "fmt"

type ErrUploadFailed struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *ErrUploadFailed) Error() string {
	return fmt.Sprintf("upload failed: %s: status %d: %s", e.Path, e.StatusCode, e.Body)
}

type ErrAPI struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *ErrAPI) Error() string {
	return fmt.Sprintf("api error: %s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}
