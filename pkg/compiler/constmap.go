package compiler

import (
	"fmt"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/config"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/rosmsg"
)

// routeConstants assigns each constant of msg to a destination field using
// the message's ordered glob rules. The first matching rule wins and an
// empty destination discards the constant. Constants without a match and
// rules that never matched are reported as warnings, not errors.
func routeConstants(log *logrus.Logger, mapping *config.MessageConstantMap, msg *rosmsg.Message) (map[string][]string, error) {
	routed := make(map[string][]string)
	if mapping == nil {
		if len(msg.Constants) > 0 {
			log.WithField("message", msg.Identity()).
				Warn("message has constants but no constant map is configured")
		}
		return routed, nil
	}

	fields := msg.FieldNames()
	ruleUsed := make([]bool, len(mapping.Rules))
	unmatched := false

	for _, c := range msg.Constants {
		dest := ""
		found := false
		for i, rule := range mapping.Rules {
			ok, err := path.Match(rule.Pattern, c.Name)
			if err != nil {
				return nil, fmt.Errorf("%w: bad pattern %q for %q: %v",
					config.ErrConfig, rule.Pattern, mapping.Message, err)
			}
			if ok {
				ruleUsed[i] = true
				dest = rule.Field
				found = true
				break
			}
		}
		if !found {
			unmatched = true
			continue
		}
		if dest == "" {
			continue
		}
		if !containsString(fields, dest) {
			return nil, fmt.Errorf("%w: field %q in message %q",
				ErrUnknownField, dest, mapping.Message)
		}
		routed[dest] = append(routed[dest], c.Name)
	}

	for i, rule := range mapping.Rules {
		if !ruleUsed[i] {
			log.WithFields(logrus.Fields{
				"message": mapping.Message,
				"pattern": rule.Pattern,
			}).Warn("constant map pattern matched nothing")
		}
	}
	if unmatched {
		log.WithField("message", mapping.Message).
			Warn("constant map did not resolve all constants")
	}
	return routed, nil
}

func containsString(list []string, s string) bool {
	for _, entry := range list {
		if entry == s {
			return true
		}
	}
	return false
}
