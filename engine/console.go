package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/statcore/engine/bonus"
	"github.com/nathoo/statcore/engine/character"
	"github.com/nathoo/statcore/engine/itembuff"
	"github.com/nathoo/statcore/engine/parser"
	"github.com/nathoo/statcore/engine/resolve"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

// Verbs lists the console verbs Step understands.
var Verbs = []string{
	"equip", "unequip", "carry", "drop", "socket",
	"buff", "unbuff", "summon", "dismiss", "mount", "dismount",
	"learn", "forget", "level",
	"show", "score", "ailments", "roll", "sweep",
}

var mutatingVerbs = map[string]bool{
	"equip": true, "unequip": true, "carry": true, "drop": true, "socket": true,
	"buff": true, "unbuff": true, "summon": true, "dismiss": true,
	"mount": true, "dismount": true, "learn": true, "forget": true, "level": true,
}

var errUsage = errors.New("usage")

// Step processes one console command and returns the result. Commands that
// change the character invalidate its derived state and rebuild it, so a
// battle score change shows up in the result's events.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Empty input.
	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// 3. Run the verb.
	out, err := e.run(intent)
	if err != nil {
		if errors.Is(err, errUsage) {
			result.Output = append(result.Output, usage(intent.Verb))
		} else {
			result.Output = append(result.Output, err.Error())
		}
		return result
	}
	result.Output = append(result.Output, out...)

	// 4. Rebuild after a mutation and collect notifications.
	if mutatingVerbs[intent.Verb] {
		e.Invalidate()
		snap := e.Derived()
		result.Output = append(result.Output, fmt.Sprintf("Battle score: %d", snap.BattleScore))
	}
	result.Events = append(result.Events, e.pending...)
	e.pending = nil
	return result
}

func (e *Engine) run(in types.Intent) ([]string, error) {
	switch in.Verb {
	case "equip":
		return e.equip(in)
	case "unequip":
		return e.unequip(in)
	case "carry":
		return e.carry(in)
	case "drop":
		return e.drop(in)
	case "socket":
		return e.socket(in)
	case "buff":
		return e.buff(in)
	case "unbuff":
		return e.unbuff(in)
	case "summon":
		return e.summon(in)
	case "dismiss":
		return e.dismiss(in)
	case "mount":
		return e.mount(in)
	case "dismount":
		if !e.Character.Dismount() {
			return nil, errors.New("you are not mounted")
		}
		return []string{"You dismount."}, nil
	case "learn":
		return e.learn(in)
	case "forget":
		return e.forget(in)
	case "level":
		return e.level(in)
	case "show":
		return formatSheet(e.Defs, e.Character, e.Derived()), nil
	case "score":
		return []string{fmt.Sprintf("Battle score: %d", e.Derived().BattleScore)}, nil
	case "ailments":
		return formatAilments(e.Derived().Ailments), nil
	case "roll":
		return e.roll(in)
	case "sweep":
		n := e.Sweep(e.now())
		return []string{fmt.Sprintf("Swept %d idle snapshot(s); %d cached.", n, e.caches.Len())}, nil
	default:
		return nil, fmt.Errorf("unknown command %q (try /help)", in.Verb)
	}
}

func usage(verb string) string {
	switch verb {
	case "equip":
		return "Usage: equip <item> [level N] [seed N] [version N] [hand right|left]"
	case "socket":
		return "Usage: socket <enhancer> into <equipped item>"
	case "level":
		return "Usage: level <N>"
	case "roll":
		return "Usage: roll <item> [level N] [seed N] [version N]"
	}
	return fmt.Sprintf("Usage: %s <name> [level N]", verb)
}

// intOpt reads an integer option, returning def when it is absent.
func intOpt(in types.Intent, key string, def int) (int, error) {
	v, ok := in.Options[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return n, nil
}

// itemInstance builds a new item instance from the intent's options.
func (e *Engine) itemInstance(in types.Intent, dataID string) (types.CharacterItem, error) {
	level, err := intOpt(in, "level", 1)
	if err != nil {
		return types.CharacterItem{}, err
	}
	amount, err := intOpt(in, "amount", 1)
	if err != nil {
		return types.CharacterItem{}, err
	}
	version, err := intOpt(in, "version", int(bonus.LatestVersion))
	if err != nil {
		return types.CharacterItem{}, err
	}
	if version < 0 || version > int(bonus.LatestVersion) {
		return types.CharacterItem{}, fmt.Errorf("version must be between 0 and %d", bonus.LatestVersion)
	}
	it := types.CharacterItem{DataID: dataID, Level: level, Amount: amount, Version: uint8(version)}
	if _, ok := in.Options["seed"]; ok {
		seed, err := strconv.ParseInt(in.Options["seed"], 10, 32)
		if err != nil {
			return types.CharacterItem{}, fmt.Errorf("seed must be a 32-bit number, got %q", in.Options["seed"])
		}
		it.RandomSeed = int32(seed)
	} else {
		it.RandomSeed = e.NewItemSeed()
	}
	return it, nil
}

func (e *Engine) equip(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	id, err := resolve.Definition(e.Defs, resolve.Items, in.Object)
	if err != nil {
		return nil, err
	}
	def := state.Item(e.Defs, id)
	if !itembuff.Equippable(def.Type) {
		return nil, fmt.Errorf("%s can't be equipped", title(def.Title, id))
	}
	it, err := e.itemInstance(in, id)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("%s (level %d, seed %d, v%d)", title(def.Title, id), it.Level, it.RandomSeed, it.Version)

	switch def.Type {
	case types.ItemArmor:
		e.Character.Equip(it)
		return []string{"You equip " + desc + "."}, nil
	default:
		hand := character.RightHand
		if def.Type == types.ItemShield {
			hand = character.LeftHand
		}
		switch in.Options["hand"] {
		case "left":
			hand = character.LeftHand
		case "right":
			hand = character.RightHand
		}
		_, prev := e.Character.EquipWeapon(hand, it)
		out := []string{fmt.Sprintf("You wield %s in your %s hand.", desc, handName(hand))}
		if prev != nil {
			e.Character.Carry(*prev)
			out = append(out, fmt.Sprintf("%s goes back into your pack.", e.itemTitle(prev.DataID)))
		}
		return out, nil
	}
}

func handName(h character.Hand) string {
	if h == character.LeftHand {
		return "left"
	}
	return "right"
}

func (e *Engine) equippedInstances() []resolve.Instance {
	var out []resolve.Instance
	w := e.Character.Weapons()
	for _, it := range []*types.CharacterItem{w.RightHand, w.LeftHand} {
		if it != nil {
			out = append(out, resolve.Instance{ID: it.ID, DataID: it.DataID})
		}
	}
	for _, it := range e.Character.EquipItems() {
		out = append(out, resolve.Instance{ID: it.ID, DataID: it.DataID})
	}
	return out
}

func (e *Engine) unequip(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	id, err := resolve.InstanceOf(e.Defs, resolve.Items, in.Object, e.equippedInstances())
	if err != nil {
		return nil, err
	}
	it, _ := e.Character.Unequip(id)
	e.Character.Carry(it)
	return []string{fmt.Sprintf("You unequip %s.", e.itemTitle(it.DataID))}, nil
}

func (e *Engine) carry(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	id, err := resolve.Definition(e.Defs, resolve.Items, in.Object)
	if err != nil {
		return nil, err
	}
	it, err := e.itemInstance(in, id)
	if err != nil {
		return nil, err
	}
	if it.Amount < 1 {
		return nil, errors.New("amount must be at least 1")
	}
	e.Character.Carry(it)
	return []string{fmt.Sprintf("You pick up %s x%d.", e.itemTitle(id), it.Amount)}, nil
}

func (e *Engine) drop(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	var owned []resolve.Instance
	for _, it := range e.Character.NonEquipItems() {
		owned = append(owned, resolve.Instance{ID: it.ID, DataID: it.DataID})
	}
	id, err := resolve.InstanceOf(e.Defs, resolve.Items, in.Object, owned)
	if err != nil {
		return nil, err
	}
	var dataID string
	for _, o := range owned {
		if o.ID == id {
			dataID = o.DataID
		}
	}
	e.Character.Drop(id)
	return []string{fmt.Sprintf("You drop %s.", e.itemTitle(dataID))}, nil
}

func (e *Engine) socket(in types.Intent) ([]string, error) {
	if in.Object == "" || in.Target == "" {
		return nil, errUsage
	}
	gem, err := resolve.Definition(e.Defs, resolve.Items, in.Object)
	if err != nil {
		return nil, err
	}
	if state.Item(e.Defs, gem).Type != types.ItemSocketEnhancer {
		return nil, fmt.Errorf("%s is not a socket enhancer", e.itemTitle(gem))
	}
	host, err := resolve.InstanceOf(e.Defs, resolve.Items, in.Target, e.equippedInstances())
	if err != nil {
		return nil, err
	}
	e.Character.Socket(host, gem)
	return []string{fmt.Sprintf("You socket %s.", e.itemTitle(gem))}, nil
}

func (e *Engine) buff(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	kind, id, err := resolve.Buff(e.Defs, in.Object)
	if err != nil {
		return nil, err
	}
	level, err := intOpt(in, "level", 1)
	if err != nil {
		return nil, err
	}
	e.Character.AddBuff(kind, id, level)
	return []string{fmt.Sprintf("%s %s (level %d) takes effect.", types.BuffKindNames[kind], id, level)}, nil
}

func (e *Engine) unbuff(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	kind, id, err := resolve.Buff(e.Defs, in.Object)
	if err != nil {
		return nil, err
	}
	buffs := e.Character.Buffs()
	for i := len(buffs) - 1; i >= 0; i-- {
		if buffs[i].Kind == kind && buffs[i].DataID == id {
			e.Character.RemoveBuff(buffs[i].ID)
			return []string{fmt.Sprintf("%s %s fades.", types.BuffKindNames[kind], id)}, nil
		}
	}
	return nil, fmt.Errorf("%s is not active", id)
}

func (e *Engine) summon(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	id, err := resolve.Definition(e.Defs, resolve.Summons, in.Object)
	if err != nil {
		return nil, err
	}
	level, err := intOpt(in, "level", 1)
	if err != nil {
		return nil, err
	}
	e.Character.AddSummon(types.SummonCustom, id, level)
	return []string{fmt.Sprintf("You summon %s.", title(e.Defs.Summons[id].Title, id))}, nil
}

func (e *Engine) dismiss(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	var owned []resolve.Instance
	for _, s := range e.Character.Summons() {
		owned = append(owned, resolve.Instance{ID: s.ID, DataID: s.DataID})
	}
	id, err := resolve.InstanceOf(e.Defs, resolve.Summons, in.Object, owned)
	if err != nil {
		return nil, err
	}
	e.Character.RemoveSummon(id)
	return []string{"Your summon departs."}, nil
}

func (e *Engine) mount(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	id, err := resolve.Definition(e.Defs, resolve.Mounts, in.Object)
	if err != nil {
		return nil, err
	}
	level, err := intOpt(in, "level", 1)
	if err != nil {
		return nil, err
	}
	e.Character.SetMount(types.CharacterMount{DataID: id, Level: level})
	return []string{fmt.Sprintf("You mount %s.", title(e.Defs.Mounts[id].Title, id))}, nil
}

func (e *Engine) learn(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	id, err := resolve.Definition(e.Defs, resolve.Skills, in.Object)
	if err != nil {
		return nil, err
	}
	level, err := intOpt(in, "level", 1)
	if err != nil {
		return nil, err
	}
	if level < 1 {
		return nil, errors.New("level must be at least 1")
	}
	if def := e.Defs.Skills[id]; def.MaxLevel > 0 && level > def.MaxLevel {
		level = def.MaxLevel
	}
	e.Character.SetSkill(id, level)
	return []string{fmt.Sprintf("You know %s at level %d.", title(e.Defs.Skills[id].Title, id), level)}, nil
}

func (e *Engine) forget(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	id, err := resolve.Definition(e.Defs, resolve.Skills, in.Object)
	if err != nil {
		return nil, err
	}
	if !e.Character.SetSkill(id, 0) {
		return nil, fmt.Errorf("you don't know %s", id)
	}
	return []string{fmt.Sprintf("You forget %s.", title(e.Defs.Skills[id].Title, id))}, nil
}

func (e *Engine) level(in types.Intent) ([]string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(in.Object))
	if err != nil || n < 1 {
		return nil, errUsage
	}
	e.Character.SetLevel(n)
	return []string{fmt.Sprintf("You are now level %d.", n)}, nil
}

func (e *Engine) roll(in types.Intent) ([]string, error) {
	if in.Object == "" {
		return nil, errUsage
	}
	id, err := resolve.Definition(e.Defs, resolve.Items, in.Object)
	if err != nil {
		return nil, err
	}
	it, err := e.itemInstance(in, id)
	if err != nil {
		return nil, err
	}
	return FormatRoll(state.Item(e.Defs, id), it), nil
}

func (e *Engine) itemTitle(id string) string {
	if def := state.Item(e.Defs, id); def != nil {
		return title(def.Title, id)
	}
	return id
}

func title(t, id string) string {
	if t != "" {
		return t
	}
	return id
}
