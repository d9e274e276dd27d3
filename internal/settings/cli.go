package settings

import (
	"encoding/json"
	"fmt"

	"codeberg.org/mutker/runkat/internal/errors"
	"codeberg.org/mutker/runkat/internal/metrics"
)

// Schema is the settings description consumed by an external settings hub.
type Schema struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
	Actions     []Action  `json:"actions"`
}

type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Item is one control. Only the fields relevant to Type are set.
type Item struct {
	Type        string      `json:"type"`
	Key         string      `json:"key"`
	Label       string      `json:"label"`
	Value       any         `json:"value"`
	Options     []Option    `json:"options,omitempty"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Step        *float64    `json:"step,omitempty"`
	Unit        string      `json:"unit,omitempty"`
	VisibleWhen *Visibility `json:"visible_when,omitempty"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Visibility struct {
	Key    string `json:"key"`
	Equals string `json:"equals"`
}

type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Style string `json:"style,omitempty"`
}

// Response is the result line of a set or action request.
type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

const ActionReset = "reset"

type slider struct {
	min, max, step float64
	unit           string
}

// the threshold slider is narrower than the validated range for cpu usage
var thresholdSliders = map[metrics.Source]slider{
	metrics.SourceUsage:       {0, 30, 1, "%"},
	metrics.SourceFrequency:   {0, 10000, 100, " MHz"},
	metrics.SourceTemperature: {0, 150, 1, "°C"},
}

func ptr(v float64) *float64 { return &v }

// Describe builds the schema for cfg. The threshold slider follows the
// active source.
func Describe(cfg Config) Schema {
	sl := thresholdSliders[cfg.AnimationSource]

	options := make([]Option, 0, len(metrics.Sources))
	for _, s := range metrics.Sources {
		options = append(options, Option{Value: string(s), Label: s.Label()})
	}

	return Schema{
		Title:       "RunKat Settings",
		Description: "The cat runs faster based on the selected metric.",
		Sections: []Section{
			{
				Title: "Behavior",
				Items: []Item{
					{
						Type:    "select",
						Key:     "animation_source",
						Label:   "Monitor",
						Value:   string(cfg.AnimationSource),
						Options: options,
					},
					{
						Type:  "slider",
						Key:   "sleep_threshold",
						Label: "Sleep Below",
						Value: cfg.CurrentThreshold(),
						Min:   ptr(sl.min),
						Max:   ptr(sl.max),
						Step:  ptr(sl.step),
						Unit:  sl.unit,
					},
					{
						Type:        "toggle",
						Key:         "show_percentage",
						Label:       "Show % on Icon",
						Value:       cfg.ShowPercentage,
						VisibleWhen: &Visibility{Key: "animation_source", Equals: string(metrics.SourceUsage)},
					},
				},
			},
			{
				Title: "Animation",
				Items: []Item{
					fpsItem("min_fps", "Slowest Speed", cfg.MinFPS),
					fpsItem("max_fps", "Fastest Speed", cfg.MaxFPS),
				},
			},
		},
		Actions: []Action{
			{ID: ActionReset, Label: "Reset to Defaults", Style: "destructive"},
		},
	}
}

func fpsItem(key, label string, v float64) Item {
	return Item{
		Type:  "slider",
		Key:   key,
		Label: label,
		Value: v,
		Min:   ptr(FPSFloor),
		Max:   ptr(FPSCeiling),
		Step:  ptr(1),
		Unit:  " fps",
	}
}

// legacy hub values
var sourceAliases = map[string]metrics.Source{
	"CpuUsage":    metrics.SourceUsage,
	"Frequency":   metrics.SourceFrequency,
	"Temperature": metrics.SourceTemperature,
}

// Apply sets one key from a JSON-encoded value and saves. Invalid input or
// a failed save leaves the file untouched.
func Apply(store *Store, key, raw string) Response {
	cfg := store.Load()

	msg, err := apply(&cfg, key, raw)
	if err != nil {
		return Response{OK: false, Message: err.Error()}
	}

	if err := store.Save(cfg); err != nil {
		return Response{OK: false, Message: fmt.Sprintf("Save failed: %v", err)}
	}

	return Response{OK: true, Message: msg}
}

func apply(cfg *Config, key, raw string) (string, error) {
	factory := errors.New()

	switch key {
	case "animation_source":
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return "", factory.WithMessage(errors.ErrInvalidArgument, fmt.Sprintf("Invalid animation_source: %s", raw))
		}
		source := metrics.Source(s)
		if alias, ok := sourceAliases[s]; ok {
			source = alias
		}
		if !source.Valid() {
			return "", factory.WithMessage(errors.ErrInvalidArgument, fmt.Sprintf("Invalid animation_source: %s", raw))
		}
		cfg.AnimationSource = source
		return "Updated animation source", nil

	case "sleep_threshold":
		v, err := parseNumber(raw)
		if err != nil {
			return "", err
		}
		cfg.SetCurrentThreshold(v)
		return "Updated sleep threshold", nil

	case "show_percentage":
		var b bool
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return "", factory.WithMessage(errors.ErrInvalidArgument, fmt.Sprintf("Invalid boolean: %v", err))
		}
		cfg.ShowPercentage = b
		return "Updated show percentage", nil

	case "min_fps":
		v, err := parseNumber(raw)
		if err != nil {
			return "", err
		}
		cfg.MinFPS = v
		return "Updated minimum speed", nil

	case "max_fps":
		v, err := parseNumber(raw)
		if err != nil {
			return "", err
		}
		cfg.MaxFPS = v
		return "Updated maximum speed", nil

	default:
		return "", factory.WithMessage(errors.ErrUnknownKey, fmt.Sprintf("Unknown key: %s", key))
	}
}

func parseNumber(raw string) (float64, error) {
	var v float64
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return 0, errors.New().WithMessage(errors.ErrInvalidArgument, fmt.Sprintf("Invalid number: %v", err))
	}

	return v, nil
}

// RunAction executes a named action.
func RunAction(store *Store, id string) Response {
	switch id {
	case ActionReset:
		if err := store.Save(Default()); err != nil {
			return Response{OK: false, Message: fmt.Sprintf("Reset failed: %v", err)}
		}
		return Response{OK: true, Message: "Reset to defaults"}
	default:
		return Response{OK: false, Message: fmt.Sprintf("Unknown action: %s", id)}
	}
}
