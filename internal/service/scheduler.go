package service

import "time"

// reviewIntervalDays 间隔复习查表：评分越高，下次复习越晚
var reviewIntervalDays = map[int]int{
	1: 1,
	2: 3,
	3: 7,
	4: 14,
	5: 30,
}

const defaultReviewDays = 7

// incorrectRetryDelay 答错后的重试间隔，与事后自评无关
const incorrectRetryDelay = 4 * time.Hour

// NextReviewForSession 根据理解程度计算技能的下次复习时间
func NextReviewForSession(understandingLevel int) time.Time {
	return nextReviewForSessionAt(time.Now(), understandingLevel)
}

func nextReviewForSessionAt(now time.Time, understandingLevel int) time.Time {
	days, ok := reviewIntervalDays[understandingLevel]
	if !ok {
		days = defaultReviewDays
	}
	return now.Add(time.Duration(days) * 24 * time.Hour)
}

// NextReviewForItem 根据复习结果计算条目的下次复习时间
// 答错一律 4 小时后重试，不看自评
func NextReviewForItem(wasCorrect bool, confidenceAfter int) time.Time {
	return nextReviewForItemAt(time.Now(), wasCorrect, confidenceAfter)
}

func nextReviewForItemAt(now time.Time, wasCorrect bool, confidenceAfter int) time.Time {
	if !wasCorrect {
		return now.Add(incorrectRetryDelay)
	}
	return nextReviewForSessionAt(now, confidenceAfter)
}
