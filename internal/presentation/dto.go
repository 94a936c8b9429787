package presentation

import (
	"time"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/history"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
)

// ViolationDTO is one skeleton validation finding.
type ViolationDTO struct {
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Nodes    []string `json:"nodes"`
}

// SkeletonReportDTO represents a parsed skeleton and its validation report.
type SkeletonReportDTO struct {
	Skeleton   string         `json:"skeleton"`
	Joints     int            `json:"joints"`
	Chains     []string       `json:"chains"`
	TwistSets  []string       `json:"twist_sets"`
	Counts     map[string]int `json:"counts"`
	Violations []ViolationDTO `json:"violations"`
	Errors     []string       `json:"errors,omitempty"`
}

// Valid reports whether the skeleton has no violations.
func (d SkeletonReportDTO) Valid() bool { return len(d.Violations) == 0 }

// FromHierarchy converts a parsed hierarchy to a DTO.
func FromHierarchy(path string, h *skeleton.Hierarchy) SkeletonReportDTO {
	dto := SkeletonReportDTO{
		Skeleton:   path,
		Joints:     len(h.Nodes()),
		Chains:     make([]string, 0),
		TwistSets:  make([]string, 0),
		Counts:     make(map[string]int),
		Violations: make([]ViolationDTO, 0),
	}
	for _, k := range h.ChainKeys() {
		dto.Chains = append(dto.Chains, k.String())
	}
	for _, k := range h.TwistKeys() {
		dto.TwistSets = append(dto.TwistSets, k.String())
	}
	report := h.Report()
	for c, n := range report.Counts() {
		dto.Counts[string(c)] = n
	}
	for _, v := range report.All() {
		nodes := v.Nodes
		if nodes == nil {
			nodes = []string{}
		}
		dto.Violations = append(dto.Violations, ViolationDTO{
			Category: string(v.Category),
			Message:  v.Message,
			Nodes:    nodes,
		})
	}
	for _, err := range h.Errors() {
		dto.Errors = append(dto.Errors, err.Error())
	}
	return dto
}

// FailureDTO is a fragment that could not be built.
type FailureDTO struct {
	Index     int    `json:"index"`
	Component string `json:"component"`
	Error     string `json:"error"`
}

// BuildDTO summarizes one rig build.
type BuildDTO struct {
	Rig       string       `json:"rig"`
	Skeleton  string       `json:"skeleton"`
	RigFile   string       `json:"rig_file"`
	Version   float64      `json:"version"`
	Built     []string     `json:"built"`
	Skipped   []string     `json:"skipped"`
	Failed    []FailureDTO `json:"failed"`
	Derived   int          `json:"derived"`
	ElapsedMs int64        `json:"elapsed_ms"`
	OK        bool         `json:"ok"`
}

// FromBuild converts a build result to a DTO.
func FromBuild(r *rig.Rig, skeletonPath, rigFile string, res rig.BuildResult, elapsed time.Duration) BuildDTO {
	dto := BuildDTO{
		Rig:       r.Name(),
		Skeleton:  skeletonPath,
		RigFile:   rigFile,
		Version:   r.Version(),
		Built:     keys(res.Built),
		Skipped:   keys(res.Skipped),
		Failed:    make([]FailureDTO, len(res.Failed)),
		Derived:   res.Derived,
		ElapsedMs: elapsed.Milliseconds(),
		OK:        res.OK(),
	}
	for i, f := range res.Failed {
		dto.Failed[i] = FailureDTO{Index: f.Index, Component: f.Key.String(), Error: f.Err.Error()}
	}
	return dto
}

func keys(ks []rig.ComponentKey) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.String()
	}
	return out
}

// StaleDTO is a component built from an older definition version.
type StaleDTO struct {
	Component string `json:"component"`
	Built     int    `json:"built"`
	Current   int    `json:"current"`
}

// FromStale converts stale components to DTOs.
func FromStale(stale []rig.StaleComponent) []StaleDTO {
	dtos := make([]StaleDTO, len(stale))
	for i, s := range stale {
		dtos[i] = StaleDTO{Component: s.Key.String(), Built: s.Built, Current: s.Current}
	}
	return dtos
}

// HistoryDTO is one history record without its document.
type HistoryDTO struct {
	ID        string    `json:"id"`
	Rig       string    `json:"rig"`
	File      string    `json:"file,omitempty"`
	Action    string    `json:"action"`
	Version   float64   `json:"version"`
	Built     int       `json:"built"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

// FromRecords converts history records to DTOs.
func FromRecords(records []*history.Record) []HistoryDTO {
	dtos := make([]HistoryDTO, len(records))
	for i, r := range records {
		dtos[i] = HistoryDTO{
			ID:        r.ID(),
			Rig:       r.RigName(),
			File:      r.RigFile(),
			Action:    string(r.Action()),
			Version:   r.Version(),
			Built:     r.Built(),
			Skipped:   r.Skipped(),
			Failed:    r.Failed(),
			CreatedAt: r.CreatedAt(),
		}
	}
	return dtos
}

// TypeDTO describes a registered component type.
type TypeDTO struct {
	Type           string `json:"type"`
	Version        int    `json:"version"`
	SingleInstance bool   `json:"single_instance"`
	Nested         bool   `json:"nested"`
	AutoDerived    bool   `json:"auto_derived"`
	Description    string `json:"description"`
}

// FromDefinitions converts component definitions to DTOs.
func FromDefinitions(defs []rig.Definition) []TypeDTO {
	dtos := make([]TypeDTO, len(defs))
	for i, d := range defs {
		dtos[i] = TypeDTO{
			Type:           d.Type,
			Version:        d.Version,
			SingleInstance: d.SingleInstance,
			Nested:         d.Nested,
			AutoDerived:    d.AutoDerived,
			Description:    d.Description,
		}
	}
	return dtos
}
