package services_test

import (
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/gomega"

	"github.com/kubev2v/transfer-agent/internal/models"
)

// writeForm creates <dir>/<id>.xml and media files in <dir>/<id>-media.
func writeForm(dir, id string, media ...string) {
	Expect(os.WriteFile(filepath.Join(dir, id+".xml"), []byte("<h:html>"+id+"</h:html>"), 0o644)).To(Succeed())
	if len(media) == 0 {
		return
	}
	mediaDir := filepath.Join(dir, id+"-media")
	Expect(os.MkdirAll(mediaDir, 0o755)).To(Succeed())
	for _, m := range media {
		Expect(os.WriteFile(filepath.Join(mediaDir, m), []byte(m), 0o644)).To(Succeed())
	}
}

type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Publish(e models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) OfType(t models.EventType) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
