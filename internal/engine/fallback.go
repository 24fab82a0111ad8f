package engine

import (
	"fmt"

	"github.com/rcliao/eliza/internal/memory"
	"github.com/rcliao/eliza/internal/model"
)

// FallbackPool holds the generic replies used when nothing else applies.
var FallbackPool = []string{
	"Erzähl mir mehr davon.",
	"Warum denkst du das?",
	"Wie fühlst du dich dabei?",
	"Das ist interessant. Fahre fort.",
	"Kannst du das näher erklären?",
	"Ist das ein spannendes Thema?",
}

func (e *Engine) fallback() string {
	return FallbackPool[e.picker.Intn(len(FallbackPool))]
}

// followUp derives a reply from a remembered topic. ok is false when the
// topic has no follow-up of its own.
func followUp(it memory.Item) (reply string, ok bool) {
	switch it.Topic {
	case model.TopicEmotion:
		return fmt.Sprintf("Du hast vorhin erwähnt, dass du dich %s fühlst. Möchtest du darauf zurückkommen?", it.Keyword), true
	case model.TopicFamily:
		return "Vorhin ging es um deine Familie. Wie beschäftigt dich das gerade?", true
	case model.TopicDesire:
		return fmt.Sprintf("Du wolltest vorhin %s. Was hält dich davon ab?", it.Keyword), true
	case model.TopicNone, model.TopicReason, model.TopicHobby:
		return "", false
	default:
		return "", false
	}
}
