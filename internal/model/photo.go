package model

import "time"

// Photo is an image file in the gallery directory.  The filename is its
// identity.
type Photo struct {
    Name    string
    Size    int64
    ModTime time.Time
}
