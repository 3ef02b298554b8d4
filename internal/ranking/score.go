package ranking

import (
	"math"
	"time"
)

// DecayConstant 衰减常数(秒)
const DecayConstant = 45000

// Score 根据票数和发布时间计算文章分数。
// 正票文章随时间缓慢升分,负票文章随时间降分;零票文章只看数量级。
// 发布时间晚于 now 时按零流逝时间处理。
func Score(votes int, publishedAt, now time.Time) int {
	magnitude := math.Log(math.Max(math.Abs(float64(votes)), 1))

	var sign float64
	switch {
	case votes > 0:
		sign = 1
	case votes < 0:
		sign = -1
	}

	elapsed := math.Ceil(now.Sub(publishedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	return int(math.Floor(magnitude + sign*elapsed/DecayConstant))
}
