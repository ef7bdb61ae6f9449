// Package effects applies content-defined patches to built buff snapshots.
// Every patch is one atomic operation on one field. A patch that cannot be
// applied is logged and skipped; it never aborts the build.
package effects

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine/buff"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

var (
	// ErrUnsupportedTarget means the patch names no known snapshot field.
	ErrUnsupportedTarget = errors.New("unsupported patch target")
	// ErrUnsupportedOp means the op is not valid for the target's type.
	ErrUnsupportedOp = errors.New("unsupported patch op")
	// ErrValueType means the patch value cannot be used for the target.
	ErrValueType = errors.New("patch value has wrong type")
)

// Apply runs patches against c in order and returns how many applied.
func Apply(c *buff.Calculated, patches []types.Patch, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	applied := 0
	for _, p := range patches {
		if err := applyPatch(c, p); err != nil {
			log.Warn("skipping buff patch",
				zap.String("buff", buffID(c)),
				zap.String("target", p.Target),
				zap.String("op", p.Op),
				zap.Error(err))
			continue
		}
		applied++
	}
	return applied
}

// Validate reports whether p could apply to some buff, without applying it.
func Validate(p types.Patch) error {
	return applyPatch(buff.Zero(), p)
}

func buffID(c *buff.Calculated) string {
	if c.Def == nil {
		return ""
	}
	return c.Def.ID
}

func applyPatch(c *buff.Calculated, p types.Patch) error {
	head, key, _ := strings.Cut(p.Target, ".")

	switch head {
	case "duration":
		v, err := numeric(c.RawDuration(), p)
		if err != nil {
			return err
		}
		c.SetDuration(v)
		return nil

	case "max_stack":
		return patchInt(&c.MaxStack, p)

	case "recovery":
		f := recoveryField(c, key)
		if f == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, p.Target)
		}
		return patchFloat(f, p)

	case "remove_on":
		f := removeOnField(c, key)
		if f == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, p.Target)
		}
		return patchFloat(f, p)

	case "stats", "stats_rate":
		id, ok := stats.ID(key)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, p.Target)
		}
		if head == "stats" {
			return patchFloat(&c.Stats[id], p)
		}
		return patchFloat(&c.StatsRate[id], p)

	case "attributes", "attributes_rate", "resistances", "armors", "armors_rate",
		"status_effect_resistances", "buff_removals":
		if key == "" {
			return fmt.Errorf("%w: %s needs an id", ErrUnsupportedTarget, p.Target)
		}
		m := floatMap(c, head)
		v, err := numeric(m[key], p)
		if err != nil {
			return err
		}
		m[key] = v
		return nil

	case "damages", "damages_rate":
		if key == "" {
			return fmt.Errorf("%w: %s needs an id", ErrUnsupportedTarget, p.Target)
		}
		m := c.Damages
		if head == "damages_rate" {
			m = c.DamagesRate
		}
		cur := m[key]
		lo, err := numeric(cur.Min, p)
		if err != nil {
			return err
		}
		hi, _ := numeric(cur.Max, p)
		m[key] = types.MinMax{Min: lo, Max: hi}
		return nil

	case "skills":
		if key == "" {
			return fmt.Errorf("%w: %s needs an id", ErrUnsupportedTarget, p.Target)
		}
		v, err := numeric(float64(c.Skills[key]), p)
		if err != nil {
			return err
		}
		c.Skills[key] = int(v)
		return nil

	case "ailment":
		f := ailmentField(c, key)
		if f == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, p.Target)
		}
		if p.Op != "set" {
			return fmt.Errorf("%w: %s on flag %s", ErrUnsupportedOp, p.Op, p.Target)
		}
		b, ok := p.Value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s wants bool, got %T", ErrValueType, p.Target, p.Value)
		}
		*f = b
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTarget, p.Target)
	}
}

func numeric(cur float64, p types.Patch) (float64, error) {
	v, ok := toFloat(p.Value)
	if !ok {
		return cur, fmt.Errorf("%w: %s wants number, got %T", ErrValueType, p.Target, p.Value)
	}
	switch p.Op {
	case "add":
		return cur + v, nil
	case "mul":
		return cur * v, nil
	case "set":
		return v, nil
	default:
		return cur, fmt.Errorf("%w: %q", ErrUnsupportedOp, p.Op)
	}
}

func patchFloat(f *float64, p types.Patch) error {
	v, err := numeric(*f, p)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func patchInt(f *int, p types.Patch) error {
	v, err := numeric(float64(*f), p)
	if err != nil {
		return err
	}
	*f = int(v)
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func recoveryField(c *buff.Calculated, key string) *float64 {
	switch key {
	case "hp":
		return &c.RecoveryHP
	case "mp":
		return &c.RecoveryMP
	case "stamina":
		return &c.RecoveryStamina
	case "food":
		return &c.RecoveryFood
	case "water":
		return &c.RecoveryWater
	}
	return nil
}

func removeOnField(c *buff.Calculated, key string) *float64 {
	switch key {
	case "attack":
		return &c.RemoveOnAttackChance
	case "attacked":
		return &c.RemoveOnAttackedChance
	case "use_skill":
		return &c.RemoveOnUseSkillChance
	case "use_item":
		return &c.RemoveOnUseItemChance
	case "pickup_item":
		return &c.RemoveOnPickupItemChance
	}
	return nil
}

func floatMap(c *buff.Calculated, head string) map[string]float64 {
	switch head {
	case "attributes":
		return c.Attributes
	case "attributes_rate":
		return c.AttributesRate
	case "resistances":
		return c.Resistances
	case "armors":
		return c.Armors
	case "armors_rate":
		return c.ArmorsRate
	case "status_effect_resistances":
		return c.StatusEffectResistances
	default:
		return c.BuffRemovals
	}
}

// AilmentFlagNames lists the flag names accepted after "ailment.".
var AilmentFlagNames = []string{
	"disallow_move", "disallow_sprint", "disallow_walk", "disallow_jump",
	"disallow_dash", "disallow_crouch", "disallow_crawl", "disallow_attack",
	"disallow_use_skill", "disallow_use_item", "freeze_animation",
	"hide", "reveals_hide", "blind", "mute_footstep_sound",
}

func ailmentField(c *buff.Calculated, key string) *bool {
	switch key {
	case "disallow_move":
		return &c.Disallow.DisallowMove
	case "disallow_sprint":
		return &c.Disallow.DisallowSprint
	case "disallow_walk":
		return &c.Disallow.DisallowWalk
	case "disallow_jump":
		return &c.Disallow.DisallowJump
	case "disallow_dash":
		return &c.Disallow.DisallowDash
	case "disallow_crouch":
		return &c.Disallow.DisallowCrouch
	case "disallow_crawl":
		return &c.Disallow.DisallowCrawl
	case "disallow_attack":
		return &c.Disallow.DisallowAttack
	case "disallow_use_skill":
		return &c.Disallow.DisallowUseSkill
	case "disallow_use_item":
		return &c.Disallow.DisallowUseItem
	case "freeze_animation":
		return &c.Disallow.FreezeAnimation
	case "hide":
		return &c.IsHide
	case "reveals_hide":
		return &c.IsRevealsHide
	case "blind":
		return &c.IsBlind
	case "mute_footstep_sound":
		return &c.MuteFootstepSound
	}
	return nil
}
