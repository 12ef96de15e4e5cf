package core

import "time"

// Snapshot document identity.
const (
	SnapshotVersion = "2.0"
	AppName         = "AUTO BASHKIMI-L"
)

// Snapshot is the export/import document.
type Snapshot struct {
	Version    string       `json:"version"`
	ExportDate time.Time    `json:"exportDate"`
	AppName    string       `json:"appName"`
	Data       SnapshotData `json:"data"`
}

// SnapshotData holds the collections verbatim. Orders is the active set,
// DailyLog the archive.
type SnapshotData struct {
	Customers    []Customer `json:"customers"`
	Vehicles     []Vehicle  `json:"vehicles"`
	Orders       []Order    `json:"orders"`
	DailyLog     []Order    `json:"dailyLog"`
	ServiceTypes []string   `json:"serviceTypes"`
}

// BackupFileName is the suggested download name for an export made on d.
func BackupFileName(d Date) string {
	return "garazh-backup-" + string(d) + ".json"
}

// NewSnapshot builds an export document from a state copy.
func NewSnapshot(st State, exportedAt time.Time) Snapshot {
	return Snapshot{
		Version:    SnapshotVersion,
		ExportDate: exportedAt.UTC(),
		AppName:    AppName,
		Data: SnapshotData{
			Customers:    nonNil(st.Customers),
			Vehicles:     nonNil(st.Vehicles),
			Orders:       nonNil(st.Active),
			DailyLog:     nonNil(st.Archived),
			ServiceTypes: nonNil(st.ServiceTypes),
		},
	}
}

// Dataset converts imported data to the persisted shape. Absent
// collections become empty; absent service types fall back to the
// default list.
func (d SnapshotData) Dataset() Dataset {
	ds := Dataset{
		Customers:    nonNil(d.Customers),
		Vehicles:     nonNil(d.Vehicles),
		ServiceTypes: d.ServiceTypes,
	}
	if ds.ServiceTypes == nil {
		ds.ServiceTypes = DefaultServiceTypes()
	}
	ds.Orders = make([]Order, 0, len(d.Orders)+len(d.DailyLog))
	ds.Orders = append(ds.Orders, d.DailyLog...)
	ds.Orders = append(ds.Orders, d.Orders...)
	return ds
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
