package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// TranslateMenus translates every navigation structure by creating a
// parallel structure named "<name> (TARGET)" with translated labels. The
// item hierarchy is rebuilt through a relation map from source item ids to
// created item ids. Structures whose parallel already exists are skipped.
func (s *Service) TranslateMenus(ctx context.Context, req RunRequest) (string, error) {
	r, err := s.openRun(ctx, KindMenus, req)
	if err != nil {
		return "", err
	}

	structures, err := s.navigation.ListStructures(ctx)
	if err != nil {
		s.recordError(ctx, r.jobID, fmt.Sprintf("list navigation: %v", err))
		return r.jobID, s.closeRun(ctx, r)
	}

	existingNames := make(map[string]struct{}, len(structures))
	for _, structure := range structures {
		existingNames[structure.Name] = struct{}{}
	}

	for _, structure := range structures {
		if strings.HasSuffix(structure.Name, translatedNameSuffix(r.target)) {
			continue
		}
		if _, ok := existingNames[translatedName(structure.Name, r.target)]; ok {
			s.logger.Debug("parallel structure already exists", "structure", structure.Name, "target", r.target)
			continue
		}
		if err := s.translateStructure(ctx, r, structure); err != nil {
			s.logger.Error("navigation translation failed", "job_id", r.jobID, "id", structure.ID, "error", err)
			s.recordError(ctx, r.jobID, fmt.Sprintf("navigation %s: %v", structure.ID, err))
		}
	}

	return r.jobID, s.closeRun(ctx, r)
}

func (s *Service) translateStructure(ctx context.Context, r *run, structure *interfaces.NavigationStructure) error {
	labels := make(map[string]string, len(structure.Items))
	for _, item := range structure.Items {
		if item.Label == "" {
			continue
		}
		labels[item.ID] = item.Label
	}

	diffs := s.translateFields(ctx, r, labels, nil)
	if len(diffs) == 0 {
		return nil
	}

	if r.mode == ledger.ModePreview {
		return s.jobs.AddEntity(ctx, r.jobID, entityNavigationPreview, structure.ID, diffs)
	}
	return s.buildParallelStructure(ctx, r, structure, diffs)
}

// buildParallelStructure creates the translated structure, then rewires
// parents in a second pass once every item id is known.
func (s *Service) buildParallelStructure(ctx context.Context, r *run, source *interfaces.NavigationStructure, diffs map[string]ledger.FieldDiff) error {
	labels := make(map[string]string, len(source.Items))
	for _, item := range source.Items {
		if item.Label == "" {
			continue
		}
		labels[item.ID] = item.Label
	}
	if err := s.jobs.AddBackup(ctx, r.jobID, ledger.BackupNavigation, source.ID, labels); err != nil {
		return fmt.Errorf("backup labels: %w", err)
	}

	newID, err := s.navigation.CreateStructure(ctx, translatedName(source.Name, r.target))
	if err != nil {
		return fmt.Errorf("create structure: %w", err)
	}
	if err := s.jobs.AddEntity(ctx, r.jobID, ledger.EntityNavigation, newID, nil); err != nil {
		return err
	}

	relation := make(map[string]string, len(source.Items))
	for _, item := range source.Items {
		label := item.Label
		if diff, ok := diffs[item.ID]; ok {
			label = diff.Translated
		}
		createdID, err := s.navigation.AddItem(ctx, newID, interfaces.NavigationItem{
			Label:    label,
			TargetID: s.translatedTarget(ctx, item.TargetID, r.target),
		})
		if err != nil {
			return fmt.Errorf("add item %s: %w", item.ID, err)
		}
		relation[item.ID] = createdID
	}

	for _, item := range source.Items {
		if item.ParentID == "" {
			continue
		}
		parent, ok := relation[item.ParentID]
		if !ok {
			continue
		}
		if err := s.navigation.SetItemParent(ctx, newID, relation[item.ID], parent); err != nil {
			return fmt.Errorf("set parent of %s: %w", item.ID, err)
		}
	}

	return nil
}

// parallelStructureExists reports whether a structure already carries the
// translated name, guarding apply against duplicating work done since the
// preview was staged.
func (s *Service) parallelStructureExists(ctx context.Context, name, target string) (bool, error) {
	structures, err := s.navigation.ListStructures(ctx)
	if err != nil {
		return false, err
	}
	wanted := translatedName(name, target)
	for _, structure := range structures {
		if structure.Name == wanted {
			return true, nil
		}
	}
	return false, nil
}

// translatedTarget points a menu entry at the linked translation of its
// target document when one exists, keeping navigation within the language.
func (s *Service) translatedTarget(ctx context.Context, targetID, lang string) string {
	if targetID == "" {
		return ""
	}
	translated, err := s.documents.TranslationOf(ctx, targetID, lang)
	if err != nil || translated == "" {
		return targetID
	}
	return translated
}

func translatedName(name, target string) string {
	return name + translatedNameSuffix(target)
}

func translatedNameSuffix(target string) string {
	return fmt.Sprintf(" (%s)", strings.ToUpper(target))
}
