package handlers

import (
	"fmt"
	"net/http"
	"strconv"
)

// pathID reads a numeric path wildcard. Garbage in the path is a client
// error, not a missing resource.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid path parameter %q", name)
	}
	return id, nil
}
