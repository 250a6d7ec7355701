package file

import (
	"context"
	"os"

	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
	"gopkg.in/yaml.v3"
)

// RuleFile is the yaml document holding limit rules
type RuleFile struct {
	Rules []*limitrule.Rule `yaml:"rules"`
}

// limitRuleRepository serves rules loaded once from a yaml file
type limitRuleRepository struct {
	rules  map[types.LimitTarget][]*limitrule.Rule
	logger *logger.Logger
}

// NewLimitRuleRepository reads and validates the rule file at path
func NewLimitRuleRepository(path string, logger *logger.Logger) (limitrule.Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read limit rule file").
			WithReportableDetails(map[string]any{
				"path": path,
			}).
			Mark(ierr.ErrSystem)
	}

	repo, err := ParseLimitRules(data, logger)
	if err != nil {
		return nil, err
	}

	logger.Infow("loaded limit rules from file", "path", path)
	return repo, nil
}

// ParseLimitRules builds a repository from a yaml rule document
func ParseLimitRules(data []byte, logger *logger.Logger) (limitrule.Repository, error) {
	var doc RuleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Limit rule file is not valid yaml").
			Mark(ierr.ErrValidation)
	}

	repo := &limitRuleRepository{
		rules:  make(map[types.LimitTarget][]*limitrule.Rule),
		logger: logger,
	}

	seen := make(map[string]struct{}, len(doc.Rules))
	for _, rule := range doc.Rules {
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[rule.ID]; ok {
			return nil, ierr.NewError("duplicate limit rule id").
				WithHintf("Limit rule %s is defined more than once", rule.ID).
				Mark(ierr.ErrValidation)
		}
		seen[rule.ID] = struct{}{}

		if !rule.IsActive() {
			continue
		}
		if !rule.Type.SupportedBy(rule.Granularity) {
			logger.Warnw("limit rule type has no effect at its granularity",
				"rule_id", rule.ID,
				"granularity", rule.Granularity,
				"type", rule.Type,
			)
		}
		key := rule.Target()
		repo.rules[key] = append(repo.rules[key], rule)
	}

	for _, rules := range repo.rules {
		limitrule.SortRules(rules)
	}
	return repo, nil
}

func (r *limitRuleRepository) ListByTarget(_ context.Context, granularity types.LimitGranularity, targetID string) ([]*limitrule.Rule, error) {
	rules := r.rules[types.LimitTarget{Granularity: granularity, ID: targetID}]

	// callers must not be able to mutate the loaded set
	out := make([]*limitrule.Rule, len(rules))
	for i, rule := range rules {
		c := *rule
		out[i] = &c
	}
	return out, nil
}
