package repository

import (
    "errors"
    "io"
    "io/fs"
    "os"
    "path/filepath"
    "regexp"
    "sort"

    "github.com/iliyamo/appointment-booking/internal/model"
)

// imagePattern matches the extensions exposed on the public gallery list.
var imagePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)

// PhotoRepo manages the gallery directory.  Files are stored under the
// uploader's original filename; a second upload with the same name
// replaces the first.
type PhotoRepo struct {
    dir string
}

func NewPhotoRepo(dir string) *PhotoRepo { return &PhotoRepo{dir: dir} }

// Dir returns the directory served at /img.
func (r *PhotoRepo) Dir() string { return r.dir }

// List returns every regular file in the directory sorted by name.
func (r *PhotoRepo) List() ([]model.Photo, error) {
    entries, err := os.ReadDir(r.dir)
    if err != nil {
        return nil, err
    }
    photos := make([]model.Photo, 0, len(entries))
    for _, e := range entries {
        if e.IsDir() {
            continue
        }
        info, err := e.Info()
        if err != nil {
            return nil, err
        }
        photos = append(photos, model.Photo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
    }
    sort.Slice(photos, func(i, j int) bool { return photos[i].Name < photos[j].Name })
    return photos, nil
}

// ListImages returns the names of files with an image extension.
func (r *PhotoRepo) ListImages() ([]string, error) {
    photos, err := r.List()
    if err != nil {
        return nil, err
    }
    names := make([]string, 0, len(photos))
    for _, p := range photos {
        if imagePattern.MatchString(p.Name) {
            names = append(names, p.Name)
        }
    }
    return names, nil
}

// Add writes src under the base of name and returns the stored name.
func (r *PhotoRepo) Add(name string, src io.Reader) (string, error) {
    path, base, err := r.path(name)
    if err != nil {
        return "", err
    }
    if err := os.MkdirAll(r.dir, 0o755); err != nil {
        return "", err
    }
    f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
    if err != nil {
        return "", err
    }
    if _, err := io.Copy(f, src); err != nil {
        _ = f.Close()
        return "", err
    }
    return base, f.Close()
}

// Delete removes the file if present; a missing file is not an error.
func (r *PhotoRepo) Delete(name string) error {
    path, _, err := r.path(name)
    if err != nil {
        return err
    }
    if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
        return err
    }
    return nil
}

// path strips directory components so names cannot escape the gallery.
func (r *PhotoRepo) path(name string) (string, string, error) {
    base := filepath.Base(filepath.Clean("/" + name))
    if base == "/" || base == "." || base == ".." || base == "" {
        return "", "", ErrInvalidName
    }
    return filepath.Join(r.dir, base), base, nil
}
