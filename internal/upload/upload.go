package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxFileSize is the per-file limit for uploaded images (5 MiB).
	MaxFileSize = 5 << 20
	// MaxFiles is the per-request limit on attached images.
	MaxFiles = 5

	localsKey = "uploaded_images"
	webPrefix = "/uploads"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Saver writes multipart image parts into the upload directory before the
// surrounding form fields are validated. That ordering means a failed request
// can leave files behind, so every caller that may fail after the middleware
// ran must compensate with Remove.
type Saver struct {
	root   string
	logger *zap.Logger
}

func NewSaver(root string, logger *zap.Logger) *Saver {
	return &Saver{root: root, logger: logger}
}

// Images returns middleware that stores up to maxCount files from the given
// form field under root/subdir and attaches the resulting web paths
// ("/uploads/...") to the request locals. Non-image parts and oversized parts
// are rejected with 400; anything already written for the request is removed.
// Requests without a multipart form pass through untouched so JSON updates
// keep working.
func (s *Saver) Images(field, subdir string, maxCount int) fiber.Handler {
	if maxCount > MaxFiles {
		maxCount = MaxFiles
	}
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil || form == nil {
			return c.Next()
		}

		files := form.File[field]
		if len(files) > maxCount {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("Too many files, at most %d allowed", maxCount),
			})
		}

		saved := make([]string, 0, len(files))
		for _, file := range files {
			if err := validateImagePart(file); err != nil {
				s.Remove(saved)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
			}

			webPath, dest := s.destFor(subdir, file.Filename)
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				s.Remove(saved)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to store file"})
			}
			if err := c.SaveFile(file, dest); err != nil {
				s.Remove(saved)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to store file"})
			}
			saved = append(saved, webPath)
		}

		c.Locals(localsKey, saved)
		return c.Next()
	}
}

// FromCtx returns the web paths the Images middleware stored for this request.
func FromCtx(c *fiber.Ctx) []string {
	paths, _ := c.Locals(localsKey).([]string)
	return paths
}

// Remove deletes the given uploaded files, best-effort per file. Individual
// failures are logged and swallowed; they never abort the caller's flow or
// replace the error the caller is already reporting.
func (s *Saver) Remove(webPaths []string) {
	for _, p := range webPaths {
		dest := s.fileFor(p)
		if dest == "" {
			continue
		}
		if err := os.Remove(dest); err != nil {
			s.logger.Warn("failed to delete uploaded file", zap.String("path", p), zap.Error(err))
		}
	}
}

// destFor generates a unique filename (timestamp plus random suffix keeps
// collisions across concurrent requests improbable; there is no locking) and
// returns both the public web path and the on-disk destination.
func (s *Saver) destFor(subdir, original string) (webPath, dest string) {
	ext := strings.ToLower(filepath.Ext(original))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	webPath = webPrefix + "/" + subdir + "/" + name
	dest = filepath.Join(s.root, subdir, name)
	return webPath, dest
}

// fileFor maps a stored web path back to the file under the upload root.
func (s *Saver) fileFor(webPath string) string {
	rel := strings.TrimPrefix(filepath.ToSlash(webPath), webPrefix+"/")
	if rel == webPath || rel == "" {
		return ""
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func validateImagePart(file *multipart.FileHeader) error {
	if file.Size > MaxFileSize {
		return fmt.Errorf("file %s exceeds the 5MB limit", file.Filename)
	}

	contentType := file.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		return nil
	}
	if allowedExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return nil
	}
	return fmt.Errorf("only image files are allowed, got %s", file.Filename)
}
