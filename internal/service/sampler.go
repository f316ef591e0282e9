package service

import (
	"cbt_backend/internal/model"
	"math/rand"
	"time"
)

// Sampler draws the fixed question sequence for standard-mode attempts.
type Sampler struct {
	Pool *PoolService
}

func NewSampler(pool *PoolService) *Sampler {
	return &Sampler{Pool: pool}
}

// SampledQuestion is one drawn question, tagged with the template section it
// came from.
type SampledQuestion struct {
	QuestionID uint
	SectionID  uint
}

// SampleTemplate draws question_count distinct questions uniformly without
// replacement from each section's pool, in section order. Any section whose
// pool is too small fails the whole draw; there is no silent under-fill.
func (s *Sampler) SampleTemplate(sections []model.TestTemplateSection, now time.Time) ([]SampledQuestion, error) {
	var sampled []SampledQuestion
	for _, section := range sections {
		ids, err := s.Pool.Resolve(section.Scope(), now, section.QuestionCount, section.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range sampleN(ids, section.QuestionCount) {
			sampled = append(sampled, SampledQuestion{QuestionID: id, SectionID: section.ID})
		}
	}
	return sampled, nil
}

// sampleN picks n distinct elements uniformly at random. The input slice is
// left untouched.
func sampleN(ids []uint, n int) []uint {
	picked := append([]uint(nil), ids...)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}

// pickOne returns one element uniformly at random.
func pickOne(ids []uint) uint {
	return ids[rand.Intn(len(ids))]
}
