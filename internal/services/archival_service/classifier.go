package archival_service

import (
	"slices"

	"github.com/sunr3d/archiver-status/models"
)

type ClassifierMode string

const (
	// ModeConservative запускает архивацию на любое изменение датасета.
	ModeConservative ClassifierMode = "conservative"
	// ModeSelective запускает архивацию только при изменениях, влияющих на архив.
	ModeSelective ClassifierMode = "selective"
)

const (
	ReasonCreated          = "created"
	ReasonNoSnapshot       = "no_previous_snapshot"
	ReasonResourceAdded    = "resource_added"
	ReasonResourceRemoved  = "resource_removed"
	ReasonURLChanged       = "url_changed"
	ReasonFormatChanged    = "format_changed"
	ReasonLicenseChanged   = "license_changed"
	ReasonUnknownOperation = "unknown_operation"
	ReasonAnyUpdate        = "updated"
)

type Decision struct {
	Trigger bool
	Reasons []string
}

type Classifier struct {
	mode ClassifierMode
}

func NewClassifier(mode ClassifierMode) *Classifier {
	if mode != ModeSelective {
		mode = ModeConservative
	}
	return &Classifier{mode: mode}
}

func (c *Classifier) Mode() ClassifierMode {
	return c.mode
}

func (c *Classifier) Classify(event models.ChangeEvent) Decision {
	switch event.Operation {
	case models.OperationCreated:
		// даже без ресурсов: потребителям нужен результат "оценено, ресурсов ноль"
		return Decision{Trigger: true, Reasons: []string{ReasonCreated}}
	case models.OperationDeleted:
		return Decision{Trigger: false}
	case models.OperationUpdated:
	default:
		return Decision{Trigger: true, Reasons: []string{ReasonUnknownOperation}}
	}

	reasons := DetectChanges(event.Before, event.After)
	if c.mode == ModeConservative {
		if len(reasons) == 0 {
			reasons = []string{ReasonAnyUpdate}
		}
		return Decision{Trigger: true, Reasons: reasons}
	}

	return Decision{Trigger: len(reasons) > 0, Reasons: reasons}
}

// DetectChanges перечисляет изменения, влияющие на архивацию, в детерминированном порядке.
func DetectChanges(before, after *models.Dataset) []string {
	if before == nil || after == nil {
		return []string{ReasonNoSnapshot}
	}

	var reasons []string
	if before.LicenseID != after.LicenseID {
		reasons = append(reasons, ReasonLicenseChanged)
	}

	old := indexResources(before.Resources)
	cur := indexResources(after.Resources)

	var added, removed, urlChanged, formatChanged bool
	for id, r := range cur {
		prev, ok := old[id]
		if !ok {
			added = true
			continue
		}
		if prev.URL != r.URL {
			urlChanged = true
		}
		if prev.Format != r.Format {
			formatChanged = true
		}
	}
	for id := range old {
		if _, ok := cur[id]; !ok {
			removed = true
		}
	}

	if added {
		reasons = append(reasons, ReasonResourceAdded)
	}
	if removed {
		reasons = append(reasons, ReasonResourceRemoved)
	}
	if urlChanged {
		reasons = append(reasons, ReasonURLChanged)
	}
	if formatChanged {
		reasons = append(reasons, ReasonFormatChanged)
	}

	slices.Sort(reasons)
	return reasons
}

func indexResources(resources []models.Resource) map[string]models.Resource {
	out := make(map[string]models.Resource, len(resources))
	for _, r := range resources {
		out[r.ID] = r
	}
	return out
}
