package physiology

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/sense"
	"github.com/pelagialabs/pelagia/stimulus"
)

type stubTarget struct {
	id  uint32
	pos r3.Vec
	r   float64
}

func (t *stubTarget) EntityID() uint32       { return t.id }
func (t *stubTarget) Location() r3.Vec       { return t.pos }
func (t *stubTarget) Velocity() r3.Vec       { return r3.Vec{} }
func (t *stubTarget) Mass() float64          { return 1 }
func (t *stubTarget) Radius() float64        { return t.r }
func (t *stubTarget) Colour() body.Colour    { return body.Colour{} }
func (t *stubTarget) DepthFraction() float64 { return 0.5 }
func (t *stubTarget) Terrain() bool          { return false }

// hostStub is a scriptable Host for exercising components in isolation.
// Nearby targets are keyed by hotspot index; queries rebuild items from
// the module's current hotspot frames so geometry stays honest.
type hostStub struct {
	module  *body.Module
	self    SelfInfo
	inputs  map[int]float64
	outputs map[int]float64
	nearby  []*stubTarget

	emitted   []stimulus.Stimulus
	energy    float64
	deposited float64
	chems     [body.NumChemicals]float64
	colours   map[string][2]body.Colour
	forces    map[int]float64
}

func newHostStub(asset string) *hostStub {
	spec, ok := body.LookupAsset(asset)
	if !ok {
		panic("unknown asset " + asset)
	}
	m := spec.NewModule("test:" + asset)
	return &hostStub{
		module:  m,
		self:    SelfInfo{Radius: m.Radius, Mass: m.Mass},
		inputs:  make(map[int]float64),
		outputs: make(map[int]float64),
		energy:  100,
		colours: make(map[string][2]body.Colour),
		forces:  make(map[int]float64),
	}
}

func (h *hostStub) Module() *body.Module { return h.module }
func (h *hostStub) Self() SelfInfo       { return h.self }

func (h *hostStub) Input(ch int) float64     { return h.inputs[ch] }
func (h *hostStub) Output(ch int, v float64) { h.outputs[ch] = clamp01(v) }

func (h *hostStub) Sense(hotspot int, rng float64, f sense.Filter) []sense.Item {
	origin := h.module.Pos
	forward := r3.Vec{Y: 1}
	if hotspot != WholeModule {
		origin, forward = h.module.HotspotWorld(hotspot)
	}
	var out []sense.Item
	for _, t := range h.nearby {
		if r3.Norm(r3.Sub(t.pos, origin)) > rng {
			continue
		}
		out = append(out, sense.NewItem(t, origin, forward, rng))
	}
	return out
}

func (h *hostStub) Emit(typ string, hotspot int, rng, halfAngle float64, params [4]float64) {
	h.emitted = append(h.emitted, stimulus.Stimulus{Type: typ, Range: rng, Params: params})
}

func (h *hostStub) EmitTo(target uint32, typ string, hotspot int, rng float64, params [4]float64) {
	h.emitted = append(h.emitted, stimulus.Stimulus{Type: typ, TargetID: target, Range: rng, Params: params})
}

func (h *hostStub) EmitSound(rng, pitch, cue float64) {
	h.Emit(stimulus.TypeSound, WholeModule, rng, 0, [4]float64{pitch, cue})
}

func (h *hostStub) EmitDisturbance(rng float64) {
	h.Emit(stimulus.TypeDisturbance, WholeModule, rng, 0, [4]float64{rng})
}

func (h *hostStub) Reply(orig *stimulus.Stimulus, params [4]float64) {
	r := orig.MakeReply(0, h.self.Location, params)
	h.emitted = append(h.emitted, *r)
}

func (h *hostStub) SetColour(element string, diffuse, emissive body.Colour) {
	h.colours[element] = [2]body.Colour{diffuse, emissive}
}

func (h *hostStub) Propel(hotspot int, force float64) { h.forces[hotspot] += force }

func (h *hostStub) DrawEnergy(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	granted := math.Min(amount, h.energy)
	h.energy -= granted
	return granted
}

func (h *hostStub) Deposit(amount float64) { h.deposited += amount }

func (h *hostStub) Chemical(idx int) float64 { return h.chems[idx] }
func (h *hostStub) StirChemical(idx int, delta float64) {
	h.chems[idx] = clamp01(h.chems[idx] + delta)
}

func (h *hostStub) Logf(format string, args ...any) {}

func (h *hostStub) lastEmitted(typ string) *stimulus.Stimulus {
	for i := len(h.emitted) - 1; i >= 0; i-- {
		if h.emitted[i].Type == typ {
			return &h.emitted[i]
		}
	}
	return nil
}

func TestSpawnContextSexAlternation(t *testing.T) {
	ctx := NewSpawnContext(rand.New(rand.NewSource(1)))
	want := []body.Sex{body.SexFemale, body.SexMale, body.SexFemale, body.SexMale}
	for i, w := range want {
		if got := ctx.NextSex(); got != w {
			t.Fatalf("spawn %d: sex = %v, want %v", i, got, w)
		}
	}
}

func TestRegistryUnknownName(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	ctx := NewSpawnContext(rand.New(rand.NewSource(1)))

	if _, err := r.New("pelagia", "jaw", ctx); err != nil {
		t.Fatalf("jaw: %v", err)
	}
	if _, err := r.New("pelagia", "gizzard", ctx); err == nil {
		t.Fatal("expected error for unregistered component name")
	}
	if _, err := r.New("acme", "jaw", ctx); err == nil {
		t.Fatal("expected error for unknown group")
	}
}

func TestResolveVariant(t *testing.T) {
	jaw := NewJaw()
	if v, err := ResolveVariant(jaw, "jaw.small"); err != nil || v != 0 {
		t.Fatalf("jaw.small: variant %d, err %v", v, err)
	}
	if v, err := ResolveVariant(jaw, "jaw.large"); err != nil || v != 1 {
		t.Fatalf("jaw.large: variant %d, err %v", v, err)
	}
	if _, err := ResolveVariant(jaw, "jaw.colossal"); err == nil {
		t.Fatal("expected error for unmapped asset")
	}

	// Single-layout components use variant 0 for any asset.
	if v, err := ResolveVariant(NewFin(), "fin.anything"); err != nil || v != 0 {
		t.Fatalf("fin: variant %d, err %v", v, err)
	}
}

// prey positioned between both tips of a jaw.small at the origin with
// heading zero, whose forward axis is world +X.
func jawPrey(id uint32) *stubTarget {
	return &stubTarget{id: id, pos: r3.Vec{X: 0.7}, r: 0.2}
}

func TestJawCatchSequence(t *testing.T) {
	h := newHostStub("jaw.small")
	j := NewJaw()
	if err := j.Init(h); err != nil {
		t.Fatal(err)
	}

	// Relaxed: nothing happens without a trigger.
	j.Update(h, 0.1)
	if j.phase != jawRelaxed {
		t.Fatalf("phase = %v, want relaxed", j.phase)
	}

	// Trigger crosses the threshold: snap disturbance, grip cleared,
	// jaw starts closing.
	h.inputs[JawChanClench] = 0.8
	j.Update(h, 0.1)
	if j.phase != jawClosing {
		t.Fatalf("phase = %v, want closing", j.phase)
	}
	if h.lastEmitted(stimulus.TypeDisturbance) == nil {
		t.Fatal("snap should emit a disturbance")
	}
	if h.outputs[JawChanGrip] != 0 {
		t.Fatalf("grip = %v at snap, want 0", h.outputs[JawChanGrip])
	}

	// Prey appears at both tips: caught, grip raised.
	h.nearby = append(h.nearby, jawPrey(7))
	j.Update(h, 0.1)
	if j.phase != jawBiting {
		t.Fatalf("phase = %v, want biting", j.phase)
	}
	if h.outputs[JawChanGrip] != 1 {
		t.Fatalf("grip = %v while biting, want 1", h.outputs[JawChanGrip])
	}

	// Each biting frame requests energy from the held prey alone, not
	// from everything near the throat.
	before := len(h.emitted)
	j.Update(h, 0.1)
	feed := h.lastEmitted(stimulus.TypeFeed)
	if feed == nil || len(h.emitted) == before {
		t.Fatal("biting should emit a feed request")
	}
	if feed.Params[0] <= 0 {
		t.Fatalf("feed request amount = %v, want > 0", feed.Params[0])
	}
	if feed.TargetID != 7 {
		t.Fatalf("feed request target = %v, want the held prey 7", feed.TargetID)
	}

	// Prey vanishes: held reference is re-validated, jaw re-closes.
	h.nearby = nil
	j.Update(h, 0.1)
	if j.phase != jawClosing {
		t.Fatalf("phase after escape = %v, want closing", j.phase)
	}
	if h.outputs[JawChanGrip] != 0 {
		t.Fatalf("grip = %v after escape, want 0", h.outputs[JawChanGrip])
	}

	// Trigger released: open back up and come to rest.
	h.inputs[JawChanClench] = 0
	j.Update(h, 0.1)
	if j.phase != jawOpening {
		t.Fatalf("phase = %v, want opening", j.phase)
	}
	for i := 0; i < 50; i++ {
		j.Update(h, 0.1)
	}
	if j.phase != jawRelaxed {
		t.Fatalf("phase = %v after opening, want relaxed", j.phase)
	}
	if h.module.Joints[0] != 0 {
		t.Fatalf("joint = %v at rest, want 0", h.module.Joints[0])
	}
}

func TestJawMiss(t *testing.T) {
	h := newHostStub("jaw.small")
	j := NewJaw()
	if err := j.Init(h); err != nil {
		t.Fatal(err)
	}

	h.inputs[JawChanClench] = 1
	j.Update(h, 0.1) // relaxed -> closing
	for i := 0; i < 10 && j.phase == jawClosing; i++ {
		j.Update(h, 0.1)
	}
	if j.phase != jawMissed {
		t.Fatalf("phase = %v with empty water, want missed", j.phase)
	}

	h.inputs[JawChanClench] = 0
	j.Update(h, 0.1)
	if j.phase != jawOpening {
		t.Fatalf("phase = %v after release, want opening", j.phase)
	}
}

func TestJawExhausted(t *testing.T) {
	h := newHostStub("jaw.small")
	h.energy = 0
	j := NewJaw()
	if err := j.Init(h); err != nil {
		t.Fatal(err)
	}

	h.inputs[JawChanClench] = 1
	j.Update(h, 0.1)
	if j.phase != jawRelaxed {
		t.Fatalf("phase = %v with no energy, want relaxed", j.phase)
	}
}

func TestJawFeedReply(t *testing.T) {
	h := newHostStub("jaw.small")
	j := NewJaw()
	if err := j.Init(h); err != nil {
		t.Fatal(err)
	}

	req := stimulus.Stimulus{Type: stimulus.TypeFeed, Params: [4]float64{0.5}}
	if j.HandleStimulus(h, &req) {
		t.Fatal("a feed request (not a reply) should not be handled by the jaw")
	}

	reply := stimulus.Stimulus{Type: stimulus.TypeFeed, Reply: true, Params: [4]float64{0.5}}
	if !j.HandleStimulus(h, &reply) {
		t.Fatal("feed reply should be handled")
	}
	j.HandleStimulus(h, &reply)

	j.Tick(h)
	if h.deposited != 1.0 {
		t.Fatalf("deposited = %v, want 1.0", h.deposited)
	}
	if h.chems[body.ChemSatiety] <= 0 {
		t.Fatal("feeding should raise satiety")
	}

	// A second tick with no new replies deposits nothing more.
	j.Tick(h)
	if h.deposited != 1.0 {
		t.Fatalf("deposited after idle tick = %v, want 1.0", h.deposited)
	}
}

func TestWhiskerExcitementAndDecay(t *testing.T) {
	h := newHostStub("whisker.standard")
	w := NewWhisker()

	s := stimulus.Stimulus{
		Type:   stimulus.TypeDisturbance,
		Origin: r3.Vec{Y: 5},
		Range:  10,
	}
	if !w.HandleStimulus(h, &s) {
		t.Fatal("disturbance should be handled")
	}
	if got := w.excitement; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("excitement = %v at half range, want 0.5", got)
	}
	if h.chems[body.ChemAdrenaline] <= 0 {
		t.Fatal("disturbance should stir adrenaline")
	}

	w.Update(h, 0.1)
	if out := h.outputs[WhiskerChanAlarm]; out <= 0 || out >= 0.5 {
		t.Fatalf("alarm output = %v, want decayed value in (0, 0.5)", out)
	}

	for i := 0; i < 200; i++ {
		w.Update(h, 0.1)
	}
	if h.outputs[WhiskerChanAlarm] != 0 {
		t.Fatalf("alarm = %v after long decay, want exactly 0", h.outputs[WhiskerChanAlarm])
	}

	// A weaker later disturbance never lowers the level.
	w.excitement = 0.8
	weak := stimulus.Stimulus{Type: stimulus.TypeDisturbance, Origin: r3.Vec{Y: 9}, Range: 10}
	w.HandleStimulus(h, &weak)
	if w.excitement != 0.8 {
		t.Fatalf("excitement = %v, want kept at 0.8", w.excitement)
	}

	sound := stimulus.Stimulus{Type: stimulus.TypeSound}
	if w.HandleStimulus(h, &sound) {
		t.Fatal("whisker should decline sound stimuli")
	}
}

func TestHeadMirroredSteering(t *testing.T) {
	h := newHostStub("head.standard")
	hd := NewHead(body.SexFemale)
	if err := hd.Init(h); err != nil {
		t.Fatal(err)
	}

	hd.Update(h, 0.05)
	port := h.outputs[HeadChanSteerPort]
	star := h.outputs[HeadChanSteerStar]
	if math.Abs(port+star-1) > 1e-9 {
		t.Fatalf("steer outputs %v + %v should sum to 1", port, star)
	}

	if !hd.AcceptCamera() {
		t.Fatal("head should accept the camera")
	}
}

func TestHeadManualSteerOverride(t *testing.T) {
	h := newHostStub("head.standard")
	hd := NewHead(body.SexMale)
	if err := hd.Init(h); err != nil {
		t.Fatal(err)
	}

	hd.Steer(h, r3.Vec{X: 1}, 0.9)
	hd.Update(h, 0.05)
	if got := h.outputs[HeadChanSteerPort]; got != 1 {
		t.Fatalf("manual steer port = %v, want 1", got)
	}
	if got := h.outputs[HeadChanDrive]; got != 0.9 {
		t.Fatalf("manual drive = %v, want 0.9", got)
	}

	// Override expires; wander takes back the wheel.
	hd.Update(h, 1.0)
	hd.Update(h, 0.05)
	if got := h.outputs[HeadChanSteerPort]; got == 1 {
		t.Fatal("manual steer should expire")
	}
}

func TestHeadCommands(t *testing.T) {
	h := newHostStub("head.standard")
	hd := NewHead(body.SexFemale)
	if err := hd.Init(h); err != nil {
		t.Fatal(err)
	}

	if !hd.Command(h, "sing", 0.5) {
		t.Fatal("sing should be recognized")
	}
	if h.lastEmitted(stimulus.TypeSound) == nil {
		t.Fatal("sing should emit a sound")
	}
	if hd.Command(h, "backflip", 1) {
		t.Fatal("unknown commands must be declined")
	}
}

func TestHeadFlashLatches(t *testing.T) {
	h := newHostStub("head.standard")
	hd := NewHead(body.SexFemale)
	if err := hd.Init(h); err != nil {
		t.Fatal(err)
	}

	if !hd.Command(h, "flash", 1) {
		t.Fatal("flash should be recognized")
	}

	// The glow output is written every frame; the flash must survive it.
	hd.Update(h, 0.05)
	if got := h.outputs[HeadChanGlow]; got != 1 {
		t.Fatalf("glow = %v on the frame after flash, want 1", got)
	}
	hd.Update(h, 0.05)
	if got := h.outputs[HeadChanGlow]; got != 1 {
		t.Fatalf("glow = %v while the flash holds, want 1", got)
	}

	// The latch expires and the glow falls back to its ambient level.
	hd.Update(h, 1.0)
	hd.Update(h, 0.05)
	if got := h.outputs[HeadChanGlow]; got == 1 {
		t.Fatal("flash should expire")
	}
}

func TestHeartChemistryTick(t *testing.T) {
	h := newHostStub("heart.standard")
	ht := NewHeart()
	if err := ht.Init(h); err != nil {
		t.Fatal(err)
	}

	h.chems[body.ChemAdrenaline] = 1
	h.chems[body.ChemSatiety] = 1
	h.chems[body.ChemStamina] = 0

	ht.Tick(h)
	if got := h.chems[body.ChemAdrenaline]; got >= 1 {
		t.Fatalf("adrenaline = %v after tick, want decayed", got)
	}
	if got := h.chems[body.ChemStamina]; got <= 0 {
		t.Fatalf("stamina = %v after tick, want regenerating", got)
	}

	// Starvation pulls the stamina ceiling down over many ticks.
	h.chems[body.ChemSatiety] = 0
	h.chems[body.ChemStamina] = 1
	for i := 0; i < 200; i++ {
		ht.Tick(h)
	}
	if got := h.chems[body.ChemStamina]; math.Abs(got-0.4) > 0.05 {
		t.Fatalf("starved stamina = %v, want near 0.4", got)
	}
}

func TestPhotophoreFlash(t *testing.T) {
	h := newHostStub("photophore.standard")
	p := NewPhotophore()
	if err := p.Init(h); err != nil {
		t.Fatal(err)
	}

	h.inputs[PhotChanGlow] = 0.2
	p.Update(h, 0.05)
	if _, ok := h.colours["photophore"]; !ok {
		t.Fatal("update should drive the photophore colour")
	}

	s := stimulus.Stimulus{Type: stimulus.TypeDisturbance, Range: 5}
	if !p.HandleStimulus(h, &s) {
		t.Fatal("photophore should flash on disturbance")
	}
	sound := stimulus.Stimulus{Type: stimulus.TypeSound}
	if p.HandleStimulus(h, &sound) {
		t.Fatal("photophore should decline sound stimuli")
	}
}

func TestTailThrustAndTwitch(t *testing.T) {
	h := newHostStub("tail.standard")
	tl := NewTail()
	if err := tl.Init(h); err != nil {
		t.Fatal(err)
	}

	fluke := h.module.HotspotIndex("fluke")
	if fluke < 0 {
		t.Fatal("tail asset should carry a fluke hotspot")
	}

	h.inputs[TailChanDrive] = 0.9
	for i := 0; i < 100; i++ {
		tl.Update(h, 0.02)
	}
	if h.forces[fluke] == 0 {
		t.Fatal("a driven tail should propel through the fluke")
	}
	if h.forces[fluke] > 0 {
		t.Fatalf("fluke force = %v, want negative (fluke faces astern)", h.forces[fluke])
	}
	if h.energy >= 100 {
		t.Fatal("swimming should cost energy")
	}

	// Strokes are abrupt enough to register as twitches on the slow tick.
	emitted := false
	h.emitted = nil
	for i := 0; i < 40 && !emitted; i++ {
		for k := 0; k < 12; k++ {
			tl.Update(h, 0.02)
		}
		tl.Tick(h)
		emitted = h.lastEmitted(stimulus.TypeDisturbance) != nil
	}
	if !emitted {
		t.Fatal("sustained swimming should emit disturbance twitches")
	}
}
