package rewards

// Source is the randomness used for sampling. *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// EnvelopeCost prices an envelope for a player level. Levels below 1 are
// priced as level 1.
func EnvelopeCost(env Envelope, level int) int {
	if level < 1 {
		level = 1
	}
	return env.BaseCost + (level-1)*env.CostIncreasePerLevel
}

// Locked returns the catalog entries whose ids are not in unlocked, in
// catalog order.
func Locked(catalog []Image, unlocked map[int]struct{}) []Image {
	locked := make([]Image, 0, len(catalog))
	for _, img := range catalog {
		if _, ok := unlocked[img.ID]; ok {
			continue
		}
		locked = append(locked, img)
	}
	return locked
}

// DrawEnvelope samples min(count, |locked|) distinct images uniformly without
// replacement from the images of catalog that are not yet unlocked. It
// returns nil when everything is unlocked.
func DrawEnvelope(catalog []Image, unlocked map[int]struct{}, count int, src Source) []Image {
	locked := dedupe(Locked(catalog, unlocked))
	if len(locked) == 0 || count <= 0 {
		return nil
	}
	if count > len(locked) {
		count = len(locked)
	}
	// partial Fisher-Yates: the first count slots end up a uniform sample
	for i := 0; i < count; i++ {
		j := i + src.Intn(len(locked)-i)
		locked[i], locked[j] = locked[j], locked[i]
	}
	drawn := make([]Image, count)
	copy(drawn, locked[:count])
	return drawn
}

// dedupe drops repeated catalog ids so a sample never holds the same id twice.
func dedupe(images []Image) []Image {
	seen := make(map[int]struct{}, len(images))
	out := images[:0]
	for _, img := range images {
		if _, ok := seen[img.ID]; ok {
			continue
		}
		seen[img.ID] = struct{}{}
		out = append(out, img)
	}
	return out
}
