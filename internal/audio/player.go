package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vocabdrill/internal/models"
)

const playTimeout = 30 * time.Second

// Player plays vocabulary pronunciation with an external command.
// Play never blocks and never fails: problems are logged and the audio is skipped.
type Player struct {
	tts      *TTSService
	audioDir string
	command  []string
	debug    bool

	// run is replaced in tests
	run func(ctx context.Context, file string) error

	wg sync.WaitGroup
}

// NewPlayer creates a player. An empty command resolves audio without playing it.
func NewPlayer(tts *TTSService, audioDir string, command []string, debug bool) *Player {
	p := &Player{
		tts:      tts,
		audioDir: audioDir,
		command:  command,
		debug:    debug,
	}
	p.run = p.exec
	return p
}

// Play starts playback of the item's audio in the background
func (p *Player) Play(item models.VocabularyItem) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()

		file, err := p.Resolve(ctx, item)
		if err != nil {
			log.Printf("Audio unavailable for %q: %v", item.Word, err)
			return
		}

		if err := p.run(ctx, file); err != nil {
			log.Printf("Failed to play audio for %q: %v", item.Word, err)
			return
		}

		if p.debug {
			log.Printf("[DEBUG] Played %s", file)
		}
	}()
}

// Wait blocks until every started playback has finished
func (p *Player) Wait() {
	p.wg.Wait()
}

// Resolve returns a local file for the item's audio: the referenced file, a
// cached download of a referenced URL, or speech generated from the word
func (p *Player) Resolve(ctx context.Context, item models.VocabularyItem) (string, error) {
	ref := strings.TrimSpace(item.AudioRef)

	switch {
	case ref == "":
		if p.tts == nil {
			return "", fmt.Errorf("no audio reference and speech generation is disabled")
		}
		return p.tts.Generate(ctx, item.Word)

	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		file := filepath.Join(p.audioDir, downloadName(ref))
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
		if p.tts == nil {
			return "", fmt.Errorf("cannot download %s without an HTTP client", ref)
		}
		if err := p.tts.download(ctx, ref, file); err != nil {
			return "", err
		}
		return file, nil

	default:
		file := ref
		if !filepath.IsAbs(file) {
			file = filepath.Join(p.audioDir, file)
		}
		if _, err := os.Stat(file); err != nil {
			return "", fmt.Errorf("audio file not found: %w", err)
		}
		return file, nil
	}
}

// downloadName derives a stable cache file name for a remote reference
func downloadName(ref string) string {
	ext := path.Ext(strings.SplitN(ref, "?", 2)[0])
	if ext == "" || len(ext) > 5 {
		ext = ".mp3"
	}
	return "remote_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(ref)).String() + ext
}

func (p *Player) exec(ctx context.Context, file string) error {
	if len(p.command) == 0 {
		return nil
	}

	args := append(append([]string{}, p.command[1:]...), file)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.command[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}
