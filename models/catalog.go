package models

// Dataset и Resource - снимки сущностей каталога, которыми владеет внешняя платформа.
type Dataset struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Notes     string     `json:"notes,omitempty"`
	LicenseID string     `json:"license_id,omitempty"`
	Resources []Resource `json:"resources"`
}

type Resource struct {
	ID        string `json:"id"`
	DatasetID string `json:"package_id"`
	URL       string `json:"url"`
	Format    string `json:"format,omitempty"`
	Name      string `json:"name,omitempty"`
}

type Operation string

const (
	OperationCreated Operation = "created"
	OperationUpdated Operation = "updated"
	OperationDeleted Operation = "deleted"
)

// ChangeEvent публикуется каталогом при создании, изменении или удалении датасета.
type ChangeEvent struct {
	Operation Operation `json:"operation"`
	Before    *Dataset  `json:"before,omitempty"`
	After     *Dataset  `json:"after,omitempty"`
}

func (e ChangeEvent) DatasetID() string {
	if e.After != nil && e.After.ID != "" {
		return e.After.ID
	}
	if e.Before != nil {
		return e.Before.ID
	}
	return ""
}
