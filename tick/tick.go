package tick

import (
	"math"
	"math/bits"
	"time"
)

// Tick 单调时钟计数, 单位为 1/Rate 秒
type Tick uint64

// Max 保留值, 表示"没有截止时间", 永远不会是真实的调度时刻
const Max Tick = math.MaxUint64

const maxDuration = time.Duration(math.MaxInt64)

// Rate 每秒tick数, 32.768kHz 晶振
const Rate = 32768

const (
	Second Tick = Rate
	Minute      = 60 * Second
	Hour        = 60 * Minute
	Day         = 24 * Hour
	Year        = 365 * Day
	// Century 哨兵替代值: Max 直接换算会溢出, 用"现在+一百年"代替
	Century = 876000 * Hour
)

// Add 饱和加法, 溢出时返回 Max
func Add(t, d Tick) Tick {
	sum, carry := bits.Add64(uint64(t), uint64(d), 0)
	if carry != 0 {
		return Max
	}
	return Tick(sum)
}

// Sub 饱和减法, t < u 时返回 0
func Sub(t, u Tick) Tick {
	if t < u {
		return 0
	}
	return t - u
}

// FromDuration duration 转换为 tick, 向上取整, 负数视为0
func FromDuration(d time.Duration) Tick {
	if d <= 0 {
		return 0
	}
	secs := Tick(d / time.Second)
	rem := Tick(d % time.Second)
	return secs*Rate + (rem*Rate+Tick(time.Second)-1)/Tick(time.Second)
}

// Elapsed 经过的时长换算成完整的tick数, 向下取整
func Elapsed(d time.Duration) Tick {
	if d <= 0 {
		return 0
	}
	return Tick(d/time.Second)*Rate + Tick(d%time.Second)*Rate/Tick(time.Second)
}

// Until 至少经过多久才能走完 t 个tick, 向上取整
func (t Tick) Until() time.Duration {
	d := t.Duration()
	if d == maxDuration {
		return d
	}
	if Elapsed(d) < t {
		d++
	}
	return d
}

// Duration tick 转换为 duration, 超出 time.Duration 表示范围时截断到最大值
func (t Tick) Duration() time.Duration {
	secs := t / Rate
	if secs > Tick(maxDuration/time.Second) {
		return maxDuration
	}
	whole := time.Duration(secs) * time.Second
	frac := time.Duration(t%Rate) * time.Second / Rate
	if whole > maxDuration-frac {
		return maxDuration
	}
	return whole + frac
}

func (t Tick) IsMax() bool {
	return t == Max
}
