package render

import "github.com/milk9111/assetloader/asset"

// AnimationClip plays frames of a texture atlas at a fixed rate.
type AnimationClip struct {
	Atlas  asset.Handle
	Frames []int
	FPS    int
}

// Frame returns the atlas frame shown at tick, given ticksPerSecond.
func (c AnimationClip) Frame(tick uint64, ticksPerSecond int) int {
	if len(c.Frames) == 0 {
		return 0
	}
	if c.FPS <= 0 || ticksPerSecond <= 0 {
		return c.Frames[0]
	}
	step := tick * uint64(c.FPS) / uint64(ticksPerSecond)
	return c.Frames[step%uint64(len(c.Frames))]
}

// AnimationLibrary stores animation clips by key.
type AnimationLibrary struct {
	clips map[string]AnimationClip
}

// NewAnimationLibrary creates an empty library.
func NewAnimationLibrary() *AnimationLibrary {
	return &AnimationLibrary{clips: make(map[string]AnimationClip)}
}

// Register adds an animation clip to the library.
func (l *AnimationLibrary) Register(key string, clip AnimationClip) {
	if l == nil || key == "" || clip.Atlas.IsZero() {
		return
	}
	l.clips[key] = clip
}

// Get returns an animation clip by key.
func (l *AnimationLibrary) Get(key string) (AnimationClip, bool) {
	if l == nil || key == "" {
		return AnimationClip{}, false
	}
	clip, ok := l.clips[key]
	return clip, ok
}
