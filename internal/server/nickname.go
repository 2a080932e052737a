package server

import (
	"math/rand"
)

// 昵称词库，玩家未报名时的缺省昵称
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"优雅的", "可爱的", "威武的", "沉稳的", "活泼的",
		"机智的", "潇洒的", "温柔的", "霸气的", "淡定的",
		"闪亮的", "迷人的", "傲娇的", "呆萌的", "高冷的",
	}

	nouns = []string{
		"小兵", "骑士", "主教", "车手", "皇后",
		"国王", "棋圣", "棋侠", "棋童", "棋痴",
		"黑马", "白马", "守塔人", "执炬者", "弈者",
		"叛将", "先锋", "军师", "布局家", "残局王",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	return adj + noun
}
