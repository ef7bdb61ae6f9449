package derived

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine/buff"
	"github.com/nathoo/statcore/engine/cache"
	"github.com/nathoo/statcore/engine/events"
	"github.com/nathoo/statcore/engine/snapshot"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

type fakeChar struct {
	id       uuid.UUID
	level    int
	base     types.CharacterStats
	attrs    map[string]float64
	skills   map[string]int
	buffs    []types.CharacterBuff
	equip    []types.CharacterItem
	weapons  types.EquipWeapons
	nonEquip []types.CharacterItem
	summons  []types.CharacterSummon
	mount    *types.CharacterMount
}

func newChar() *fakeChar {
	return &fakeChar{id: uuid.New(), level: 1, attrs: map[string]float64{}, skills: map[string]int{}}
}

func (c *fakeChar) ID() uuid.UUID                        { return c.id }
func (c *fakeChar) Level() int                           { return c.level }
func (c *fakeChar) BaseStats() types.CharacterStats      { return c.base }
func (c *fakeChar) BaseAttributes() map[string]float64   { return c.attrs }
func (c *fakeChar) Skills() map[string]int               { return c.skills }
func (c *fakeChar) Buffs() []types.CharacterBuff         { return c.buffs }
func (c *fakeChar) EquipItems() []types.CharacterItem    { return c.equip }
func (c *fakeChar) Weapons() types.EquipWeapons          { return c.weapons }
func (c *fakeChar) NonEquipItems() []types.CharacterItem { return c.nonEquip }
func (c *fakeChar) Summons() []types.CharacterSummon     { return c.summons }

func (c *fakeChar) Mount() (types.CharacterMount, bool) {
	if c.mount == nil {
		return types.CharacterMount{}, false
	}
	return *c.mount, true
}

func (c *fakeChar) status(id string) {
	c.buffs = append(c.buffs, types.CharacterBuff{ID: uuid.NewString(), Kind: types.BuffStatusEffect, DataID: id, Level: 1})
}

type monster struct {
	*fakeChar
	weapon *types.ItemDef
}

func (m monster) MonsterWeapon() (*types.ItemDef, bool) { return m.weapon, m.weapon != nil }

func statusEffect(defs *state.Defs, id string, b types.BuffDef) {
	b.ID = "status_effect:" + id
	defs.StatusEffects[id] = &types.StatusEffectDef{ID: id, Buff: &b}
}

func testDefs() *state.Defs {
	defs := state.NewDefs()
	var strStats types.CharacterStats
	strStats[types.StatHP] = 10
	defs.Attributes["str"] = &types.AttributeDef{ID: "str", BattleScore: 2, Stats: strStats}
	defs.DamageElements["physical"] = &types.DamageElementDef{
		ID: "physical", DamageBattleScore: 1, ResistanceBattleScore: 1, ArmorBattleScore: 1, MaxResistance: 0.5,
	}
	defs.DamageElements["fire"] = &types.DamageElementDef{ID: "fire"}
	defs.WeaponTypes["blade"] = &types.WeaponTypeDef{ID: "blade", DamageInfo: types.DamageInfo{Type: "melee", Distance: 2}}

	defs.Items["sword"] = &types.ItemDef{
		ID: "sword", Type: types.ItemWeapon, WeaponType: "blade", BattleScore: 5,
		Damage:    types.IncrementalMinMax{Base: types.MinMax{Min: 10, Max: 20}},
		Abilities: []types.WeaponAbility{{Key: "slash", Title: "Slash"}, {Key: "thrust", Title: "Thrust"}},
	}
	defs.Items["ruby"] = &types.ItemDef{
		ID: "ruby", Type: types.ItemSocketEnhancer,
		SocketBonus: types.BonusDef{Resistances: map[string]types.IncrementalFloat{"fire": {Base: 0.2}}},
		Abilities:   []types.WeaponAbility{{Key: "slash", Title: "Burning Slash"}, {Key: "ignite", Title: "Ignite"}},
	}
	defs.Items["helm"] = &types.ItemDef{
		ID: "helm", Type: types.ItemArmor, Weight: 4, EquipmentSet: "knight",
		Bonus: types.BonusDef{Armors: map[string]types.IncrementalFloat{"physical": {Base: 10}}},
	}
	defs.Items["plate"] = &types.ItemDef{ID: "plate", Type: types.ItemArmor, Weight: 10, EquipmentSet: "knight"}
	defs.Items["buckler"] = &types.ItemDef{ID: "buckler", Type: types.ItemShield}
	defs.Items["claw"] = &types.ItemDef{ID: "claw", Type: types.ItemWeapon, Damage: types.IncrementalMinMax{Base: types.MinMax{Min: 3, Max: 3}}}
	defs.Items["stone"] = &types.ItemDef{ID: "stone", Type: types.ItemJunk, Weight: 1}
	defs.EquipmentSets["knight"] = &types.EquipmentSetDef{ID: "knight", Effects: []types.SetEffect{
		{Count: 2, Bonus: types.BonusDef{Attributes: map[string]types.IncrementalFloat{"str": {Base: 1}}}},
		{Count: 3, Bonus: types.BonusDef{Attributes: map[string]types.IncrementalFloat{"str": {Base: 100}}}},
	}}

	defs.Skills["iron_skin"] = &types.SkillDef{ID: "iron_skin", Type: types.SkillPassive, Buff: &types.BuffDef{
		ID:       "skill:iron_skin",
		BonusDef: types.BonusDef{Armors: map[string]types.IncrementalFloat{"physical": {Base: 0, PerLevel: 5}}},
		IsBlind:  true,
	}}

	statusEffect(defs, "stun", types.BuffDef{Ailment: types.AilmentStun})
	statusEffect(defs, "freeze", types.BuffDef{Ailment: types.AilmentFreeze})
	statusEffect(defs, "mute", types.BuffDef{Ailment: types.AilmentMute, Disallow: types.AilmentFlags{DisallowMove: true}})
	statusEffect(defs, "root", types.BuffDef{Disallow: types.AilmentFlags{DisallowMove: true, DisallowDash: true}})
	statusEffect(defs, "hide", types.BuffDef{IsHide: true, MuteFootstepSound: true})
	statusEffect(defs, "reveal", types.BuffDef{IsRevealsHide: true, IsBlind: true})
	statusEffect(defs, "fragile", types.BuffDef{
		RemoveOnAttackChance:     types.IncrementalFloat{Base: 0.1},
		RemoveOnAttackedChance:   types.IncrementalFloat{Base: 0.1},
		RemoveOnUseSkillChance:   types.IncrementalFloat{Base: 0.1},
		RemoveOnUseItemChance:    types.IncrementalFloat{Base: 0.1},
		RemoveOnPickupItemChance: types.IncrementalFloat{Base: 0.1},
	})
	statusEffect(defs, "might", types.BuffDef{BonusDef: types.BonusDef{
		AttributesRate: map[string]types.IncrementalFloat{"str": {Base: 0.5}},
	}})
	statusEffect(defs, "ward", types.BuffDef{BonusDef: types.BonusDef{
		Resistances: map[string]types.IncrementalFloat{"physical": {Base: 0.9}, "fire": {Base: 0.9}},
	}})
	statusEffect(defs, "fury", types.BuffDef{BonusDef: types.BonusDef{
		DamagesRate: map[string]types.IncrementalMinMax{"physical": {Base: types.MinMax{Min: 0.5, Max: 0.5}}},
	}})
	statusEffect(defs, "polymorph_a", types.BuffDef{
		IsOverrideSkills: true, OverrideSkills: map[string]types.IncrementalInt{"bite": {Base: 1}, "claw": {Base: 2}},
	})
	statusEffect(defs, "polymorph_b", types.BuffDef{
		IsOverrideSkills: true, OverrideSkills: map[string]types.IncrementalInt{"peck": {Base: 3}},
	})
	statusEffect(defs, "long_arm", types.BuffDef{
		IsOverrideDamageInfo: true, OverrideDamageInfo: types.DamageInfo{Type: "missile", Distance: 30},
	})
	defs.Mounts["wyvern"] = &types.MountDef{ID: "wyvern", Buff: &types.BuffDef{ID: "mount:wyvern", Disallow: types.AilmentFlags{DisallowCrouch: true}}}
	return defs
}

func newAggregator(t *testing.T, defs *state.Defs, opts Options) *Aggregator {
	t.Helper()
	caches := snapshot.New(defs, snapshot.Options{TTL: time.Minute, Logger: zap.NewNop()})
	opts.Logger = zap.NewNop()
	return NewAggregator(defs, caches, opts)
}

func TestBuild_AttributesFeedStats(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	c.attrs["str"] = 5
	c.base[types.StatHP] = 100
	c.equip = []types.CharacterItem{{ID: "h", DataID: "helm", Level: 1}}
	c.status("might")

	s := a.Build(c, nil)

	assert.InDelta(t, 7.5, s.Attributes["str"], 1e-9)
	assert.InDelta(t, 175.0, s.Stats[types.StatHP], 1e-9)
	assert.Equal(t, 10.0, s.Armors["physical"])
}

func TestBuild_ResistancesClampToElementMax(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	c.status("ward")

	s := a.Build(c, nil)
	assert.Equal(t, 0.5, s.Resistances["physical"])
	assert.Equal(t, 0.9, s.Resistances["fire"])
}

func TestBuild_OverrideSkillsLatestWins(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	c.skills["iron_skin"] = 2
	c.status("polymorph_a")
	c.status("stun")
	c.status("polymorph_b")

	s := a.Build(c, nil)
	assert.Equal(t, map[string]int{"peck": 3}, s.Skills)

	c.buffs = c.buffs[:2]
	s = a.Build(c, nil)
	assert.Equal(t, map[string]int{"bite": 1, "claw": 2}, s.Skills)

	c.buffs = c.buffs[1:2]
	s = a.Build(c, nil)
	assert.Equal(t, map[string]int{"iron_skin": 2}, s.Skills)
}

func TestBuild_WeaponHand(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	c.weapons.RightHand = &types.CharacterItem{ID: "w", DataID: "sword", Level: 1, Sockets: []string{"ruby", "helm"}}
	c.weapons.LeftHand = &types.CharacterItem{ID: "s", DataID: "buckler", Level: 1}
	c.status("fury")

	s := a.Build(c, nil)
	r := s.RightHand
	require.True(t, r.Available)
	assert.False(t, r.IsDefault)
	assert.False(t, s.LeftHand.Available, "shields are not weapons")
	assert.Equal(t, types.MinMax{Min: 15, Max: 30}, r.Damages["physical"])
	assert.Equal(t, "melee", r.DamageInfo.Type)
	assert.InDelta(t, 0.2, s.Resistances["fire"], 1e-9)

	require.Len(t, r.Abilities, 3)
	slash, ok := r.Ability("slash")
	require.True(t, ok)
	assert.Equal(t, "Burning Slash", slash.Title)
	assert.Equal(t, 2, r.AbilityIndex["ignite"])
	assert.Equal(t, "thrust", r.Abilities[1].Key)

	c.status("long_arm")
	s = a.Build(c, nil)
	assert.Equal(t, types.DamageInfo{Type: "missile", Distance: 30}, s.RightHand.DamageInfo)
}

func TestBuild_DefaultWeapon(t *testing.T) {
	defs := testDefs()
	a := newAggregator(t, defs, Options{})
	c := newChar()

	s := a.Build(c, nil)
	assert.True(t, s.RightHand.Available)
	assert.True(t, s.RightHand.IsDefault)
	assert.Same(t, Unarmed, s.RightHand.Weapon)
	assert.False(t, s.LeftHand.Available)

	defs.Game.DefaultWeapon = "sword"
	s = a.Build(c, nil)
	assert.Equal(t, "sword", s.RightHand.Weapon.ID)

	m := monster{fakeChar: c, weapon: defs.Items["claw"]}
	s = a.Build(m, nil)
	assert.Equal(t, "claw", s.RightHand.Weapon.ID)
	assert.Equal(t, types.MinMax{Min: 3, Max: 3}, s.RightHand.Damages["physical"])
}

func TestBuild_EquipmentSets(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	c.equip = []types.CharacterItem{{ID: "1", DataID: "helm", Level: 1}, {ID: "2", DataID: "plate", Level: 1}}

	s := a.Build(c, nil)
	assert.Equal(t, 2, s.EquipmentSets["knight"])
	assert.Equal(t, 1.0, s.Attributes["str"])
}

func TestBuild_WeightAndSlotToggles(t *testing.T) {
	defs := testDefs()
	c := newChar()
	c.base[types.StatWeightLimit] = 10
	c.equip = []types.CharacterItem{{ID: "1", DataID: "helm", Level: 1}, {ID: "2", DataID: "plate", Level: 1}}
	c.nonEquip = []types.CharacterItem{{ID: "3", DataID: "stone", Amount: 2}}

	s := newAggregator(t, defs, Options{LimitWeight: true, LimitSlot: true}).Build(c, nil)
	assert.Equal(t, 16.0, s.TotalWeight)
	assert.Equal(t, 10.0, s.LimitWeight)
	assert.True(t, s.IsOverweight)
	assert.Equal(t, 2, s.TotalSlot)
	assert.True(t, s.IsOverSlot)

	s = newAggregator(t, defs, Options{}).Build(c, nil)
	assert.False(t, s.IsOverweight)
	assert.False(t, s.IsOverSlot)
}

func TestAilments_Presets(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{EarlyExitAilments: true})

	c := newChar()
	c.status("stun")
	s := a.Build(c, nil)
	assert.True(t, s.Ailments.DisallowMove)
	assert.True(t, s.Ailments.DisallowAttack)
	assert.True(t, s.Ailments.DisallowUseSkill)
	assert.True(t, s.Ailments.DisallowUseItem)
	assert.False(t, s.Ailments.FreezeAnimation)
	assert.False(t, s.Ailments.IsHide)
	assert.Len(t, s.Ailments.Active(), 10)

	c = newChar()
	c.status("freeze")
	s = a.Build(c, nil)
	assert.True(t, s.Ailments.FreezeAnimation)
	assert.Len(t, s.Ailments.Active(), 11)

	c = newChar()
	c.status("mute")
	s = a.Build(c, nil)
	assert.Equal(t, []string{"disallow_use_skill"}, s.Ailments.Active(), "presets ignore explicit flags")
}

func TestAilments_MountSummonAndPassiveSources(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	c.mount = &types.CharacterMount{DataID: "wyvern", Level: 1}
	c.skills["iron_skin"] = 1

	s := a.Build(c, nil)
	assert.True(t, s.Ailments.DisallowCrouch)
	assert.True(t, s.Ailments.IsBlind)
}

func TestAilments_SaturationStopsEarly(t *testing.T) {
	defs := testDefs()
	caches := snapshot.New(defs, snapshot.Options{TTL: time.Minute})
	buffOf := func(id string) *buff.Calculated {
		return caches.Buff(types.CharacterBuff{Kind: types.BuffStatusEffect, DataID: id, Level: 1})
	}
	sources := []*buff.Calculated{buffOf("freeze"), buffOf("hide"), buffOf("reveal"), buffOf("fragile"), buffOf("stun"), buffOf("root")}

	got, used := aggregateAilments(sources, true)
	assert.True(t, got.All())
	assert.Equal(t, 4, used)

	full, used := aggregateAilments(sources, false)
	assert.Equal(t, len(sources), used)
	assert.Equal(t, full, got)

	_, used = aggregateAilments(sources[4:], true)
	assert.Equal(t, 2, used, "stun alone never saturates")
}

func TestAilments_EarlyExitEquivalence(t *testing.T) {
	defs := testDefs()
	withExit := newAggregator(t, defs, Options{EarlyExitAilments: true})
	without := newAggregator(t, defs, Options{})
	pool := []string{"stun", "freeze", "mute", "root", "hide", "reveal", "fragile", "might", "ward"}

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		c := newChar()
		for n := r.Intn(8); n > 0; n-- {
			c.status(pool[r.Intn(len(pool))])
		}
		if r.Intn(2) == 0 {
			c.mount = &types.CharacterMount{DataID: "wyvern", Level: 1}
		}
		if r.Intn(2) == 0 {
			c.skills["iron_skin"] = 1
		}
		require.Equal(t, without.Build(c, nil).Ailments, withExit.Build(c, nil).Ailments, "case %d", i)
	}
}

func TestBattleScore(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	c.attrs["str"] = 3

	// 3 str * 2 + unarmed (1+1)/2 * 1
	assert.Equal(t, 7, a.Build(c, nil).BattleScore)

	c.attrs["str"] = 3.2
	assert.Equal(t, 8, a.Build(c, nil).BattleScore)

	c.attrs["str"] = 0
	c.weapons.RightHand = &types.CharacterItem{ID: "w", DataID: "sword", Level: 1}
	// sword (10+20)/2 + intrinsic 5
	assert.Equal(t, 20, a.Build(c, nil).BattleScore)
}

func TestBattleScore_NotifiesLocalCharacter(t *testing.T) {
	defs := testDefs()
	d := events.NewDispatcher()
	var got []types.Event
	d.On(events.BattleScoreChanged, func(e types.Event) { got = append(got, e) })

	local := newChar()
	other := newChar()
	a := newAggregator(t, defs, Options{
		Dispatcher: d,
		IsLocal:    func(id uuid.UUID) bool { return id == local.id },
	})

	local.attrs["str"] = 1
	first := a.Build(local, nil)
	assert.Empty(t, got, "no notification without a previous score")

	local.attrs["str"] = 4
	second := a.Build(local, first)
	require.Len(t, got, 1)
	assert.Equal(t, second.BattleScore-first.BattleScore, got[0].Data["delta"])
	assert.Equal(t, 6, got[0].Data["delta"])

	a.Build(local, second)
	assert.Len(t, got, 1, "unchanged score is silent")

	other.attrs["str"] = 1
	a.Build(other, a.Build(newChar(), nil))
	assert.Len(t, got, 1, "remote characters are silent")
}

func TestState_RebuildsOnlyWhenDirty(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	st := NewState()
	assert.Equal(t, cache.Dirty, st.Status())
	assert.Nil(t, st.Snapshot())

	first := st.Rebuild(c, a)
	assert.Equal(t, cache.Clean, st.Status())
	assert.Same(t, first, st.Rebuild(c, a))

	c.attrs["str"] = 10
	assert.Same(t, first, st.Rebuild(c, a), "mutation alone is not observed")

	st.MarkDirty()
	second := st.Rebuild(c, a)
	assert.NotSame(t, first, second)
	assert.Equal(t, 10.0, second.Attributes["str"])
}

func TestState_ConcurrentRebuild(t *testing.T) {
	a := newAggregator(t, testDefs(), Options{})
	c := newChar()
	st := NewState()

	var wg sync.WaitGroup
	results := make([]*Snapshot, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = st.Rebuild(c, a)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}
