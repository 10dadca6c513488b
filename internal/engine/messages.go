package engine

import (
	"fmt"

	"github.com/scrypster/memorykeeper/pkg/types"
)

// messageBucket selects which family of coach messages applies.
type messageBucket int

const (
	bucketStreak messageBucket = iota
	bucketMistakes
	bucketProgress
)

// agentMessages holds exactly one message per persona per bucket.
var agentMessages = map[types.AgentPersona][3]string{
	types.PersonaEncourager: {
		bucketStreak:   "Look at you go! Three in a row, that's wonderful. Your memories are shining today.",
		bucketMistakes: "It's perfectly fine to take your time. Every try helps your memory grow stronger.",
		bucketProgress: "You're doing lovely. Take a breath and enjoy remembering.",
	},
	types.PersonaInstructor: {
		bucketStreak:   "Great streak! Keep using the same approach, it's clearly working.",
		bucketMistakes: "Let's slow down. Look at each card once more before choosing.",
		bucketProgress: "Good progress. Try saying each answer out loud before you pick it.",
	},
	types.PersonaCoach: {
		bucketStreak:   "Strong run! See if you can keep the rhythm going without rushing.",
		bucketMistakes: "A few misses happen. Reset, focus on one detail, and go again.",
		bucketProgress: "Steady work. Try to link each answer to a place or a person.",
	},
	types.PersonaMentor: {
		bucketStreak:   "Excellent recall. You're in command of these memories.",
		bucketMistakes: "Pause and trust what you know.",
		bucketProgress: "Well done. Carry on at your own pace.",
	},
}

// reassuranceMessage is shown when a streak ends with a mistake.
const reassuranceMessage = "That streak was impressive! One slip doesn't undo it, you've got this."

var timePressureHints = map[types.DifficultyTier]string{
	types.DifficultyEasy:   "There's no rush. Take all the time you need.",
	types.DifficultyMedium: "Try starting with the items you remember most clearly.",
	types.DifficultyHard:   "Focus on one corner first and work outward to save time.",
}

var mistakeRecoveryHints = map[types.DifficultyTier]string{
	types.DifficultyEasy:   "Look closely at each picture and say what you see before choosing.",
	types.DifficultyMedium: "Think about when each memory happened to narrow down your choice.",
	types.DifficultyHard:   "Rule out the options you're sure are wrong, then choose from what's left.",
}

const stepByStepScaffolding = "Let's break it down:\n" +
	"1. Pick one item you are sure about.\n" +
	"2. Find the item that belongs with it.\n" +
	"3. Check your choice before moving on."

// bucketFor selects a message bucket: a streak of three or more wins over
// more than two mistakes, which wins over general progress.
func bucketFor(gc types.GameContext) messageBucket {
	switch {
	case gc.Streak >= streakThreshold:
		return bucketStreak
	case gc.Mistakes > mistakeMessageThreshold:
		return bucketMistakes
	default:
		return bucketProgress
	}
}

func agentMessage(persona types.AgentPersona, bucket messageBucket) string {
	msgs, ok := agentMessages[persona]
	if !ok {
		msgs = agentMessages[fallbackPersona]
	}
	return msgs[bucket]
}

func hintText(table map[types.DifficultyTier]string, tier types.DifficultyTier) string {
	if s, ok := table[tier]; ok {
		return s
	}
	return table[types.DifficultyMedium]
}

// memoryCueText builds memory-cue scaffolding. Without an active memory the
// prompt line is omitted.
func memoryCueText(mem *types.Memory) string {
	const lead = "Think back to a moment you wrote about in your journal."
	if mem == nil || mem.Prompt == "" {
		return lead
	}
	return fmt.Sprintf("%s\nYou were asked: %q", lead, mem.Prompt)
}

// manualHintText is offered when the user asks for help.
func manualHintText(gc types.GameContext) string {
	if gc.CurrentMemory != nil && gc.CurrentMemory.Prompt != "" {
		return fmt.Sprintf("Remember your answer to %q. What stands out about it?", gc.CurrentMemory.Prompt)
	}
	return hintText(mistakeRecoveryHints, gc.Difficulty)
}
