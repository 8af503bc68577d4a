package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		// Clock control
		{"start", domain.IntentStart, ""},
		{"go", domain.IntentStart, ""},
		{"S", domain.IntentStart, ""},
		{"pause", domain.IntentPause, ""},
		{"p", domain.IntentPause, ""},
		{"toggle", domain.IntentToggle, ""},
		{" ", domain.IntentToggle, ""},
		{"reset", domain.IntentReset, ""},
		{"r", domain.IntentReset, ""},

		// Modes
		{"focus", domain.IntentSelectMode, "focus"},
		{"f", domain.IntentSelectMode, "focus"},
		{"short", domain.IntentSelectMode, "short_break"},
		{"sb", domain.IntentSelectMode, "short_break"},
		{"short break", domain.IntentSelectMode, "short_break"},
		{"long", domain.IntentSelectMode, "long_break"},
		{"lb", domain.IntentSelectMode, "long_break"},
		{"mode long-break", domain.IntentSelectMode, "long_break"},
		{"mode nap", domain.IntentUnknown, "mode nap"},

		// Session context
		{"tag writing", domain.IntentSelectTag, "writing"},
		{"tag #deep work", domain.IntentSelectTag, "deep work"},
		{"tag", domain.IntentSelectTag, ""},
		{"task T-12", domain.IntentSelectTask, "T-12"},
		{"mood  focused ", domain.IntentSelectMood, "focused"},

		// Settings
		{"settings", domain.IntentSettings, ""},
		{"set focus 30", domain.IntentSetSetting, "focus 30"},
		{"set   sound   off", domain.IntentSetSetting, "sound off"},
		{"set focus", domain.IntentUnknown, "set focus"},

		// Misc
		{"status", domain.IntentStatus, ""},
		{"history", domain.IntentHistory, ""},
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},
		{"quit", domain.IntentQuit, ""},
		{"q", domain.IntentQuit, ""},

		// Unknown
		{"", domain.IntentUnknown, ""},
		{"make coffee", domain.IntentUnknown, "make coffee"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type != tt.wantType {
				t.Errorf("type = %s, want %s", intent.Type, tt.wantType)
			}
			if intent.Payload != tt.wantPayload {
				t.Errorf("payload = %q, want %q", intent.Payload, tt.wantPayload)
			}
		})
	}
}

func TestCLINotifier(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	var lines []string
	printFn := func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	}

	n := NewCLINotifier(log, printFn)
	n.Notify(context.Background(), "focus done")
	n.NotifyUrgent(context.Background(), "save failed")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], cyan) || !strings.Contains(lines[0], "focus done") {
		t.Errorf("notify line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], red) || !strings.Contains(lines[1], "save failed") {
		t.Errorf("urgent line = %q", lines[1])
	}

	lines = nil
	n.Plain().Notify(context.Background(), "plain")
	if len(lines) != 1 || lines[0] != "plain" {
		t.Errorf("plain line = %q", lines)
	}
}
