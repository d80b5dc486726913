package profile

import (
	"fmt"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// SyncReport lists how a sync changes the target profile. Sync uses
// replace semantics: after it the target holds exactly the source
// document.
type SyncReport struct {
	From string
	To   string

	// Added entries exist only in the source.
	Added []string
	// Overwritten entries exist in both profiles.
	Overwritten []string
	// Removed entries exist only in the target and disappear.
	Removed []string
}

// PreviewSync computes the report without touching any file.
func (m *Manager) PreviewSync(from, to string) (SyncReport, error) {
	_, _, report, err := m.syncPlan(from, to)
	return report, err
}

// Sync copies the source profile's document over the target's. Both
// profiles must exist; the default profile may appear on either side.
func (m *Manager) Sync(from, to string) (SyncReport, error) {
	srcDoc, toPath, report, err := m.syncPlan(from, to)
	if err != nil {
		return SyncReport{}, err
	}
	if err := m.writeDocument(toPath, srcDoc); err != nil {
		return SyncReport{}, err
	}

	st, err := m.Load()
	if err != nil {
		return SyncReport{}, err
	}
	m.recount(st, to, srcDoc)
	if err := m.save(st); err != nil {
		return SyncReport{}, err
	}
	return report, nil
}

func (m *Manager) syncPlan(from, to string) (srcDoc *config.Document, toPath string, report SyncReport, err error) {
	if from == to {
		return nil, "", SyncReport{}, &types.Error{Kind: types.ErrKindValidation, Msg: "source and target profile are the same"}
	}

	fromPath, err := m.DocumentPath(from)
	if err != nil {
		return nil, "", SyncReport{}, fmt.Errorf("source profile: %w", err)
	}
	toPath, err = m.DocumentPath(to)
	if err != nil {
		return nil, "", SyncReport{}, fmt.Errorf("target profile: %w", err)
	}

	source, err := m.readDocument(fromPath)
	if err != nil {
		return nil, "", SyncReport{}, err
	}
	target, err := m.readDocument(toPath)
	if err != nil {
		return nil, "", SyncReport{}, err
	}

	report = SyncReport{From: from, To: to}
	inSource := map[string]bool{}
	for _, name := range source.Names() {
		inSource[name] = true
		if target.Has(name) {
			report.Overwritten = append(report.Overwritten, name)
		} else {
			report.Added = append(report.Added, name)
		}
	}
	for _, name := range target.Names() {
		if !inSource[name] {
			report.Removed = append(report.Removed, name)
		}
	}
	return source, toPath, report, nil
}
