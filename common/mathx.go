/*
- @Author: aztec
- @Date: 2024-02-19 10:31:08
- @Description: 数学工具。均值/标准差/相关系数等
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package common

import (
	"math"
	"runtime"
	"slices"
	"sync"
)

func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// 样本标准差
func SampleStd(vs []float64) float64 {
	n := len(vs)
	if n < 2 {
		return math.NaN()
	}
	m := Mean(vs)
	acc := 0.0
	for _, v := range vs {
		d := v - m
		acc += d * d
	}
	return math.Sqrt(acc / float64(n-1))
}

// Pearson相关系数。长度不一致或有效样本少于2时返回NaN
func PearsonCorr(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}

	n := float64(len(xs))
	var sx, sy, sxy, sxx, syy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxy += xs[i] * ys[i]
		sxx += xs[i] * xs[i]
		syy += ys[i] * ys[i]
	}

	cov := sxy - sx*sy/n
	vx := sxx - sx*sx/n
	vy := syy - sy*sy/n
	if vx <= 0 || vy <= 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

// Spearman相关系数。先转为平均名次再求Pearson
func SpearmanCorr(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}
	return PearsonCorr(AverageRanks(xs), AverageRanks(ys))
}

// 平均名次。相同值取名次均值，名次从1开始
func AverageRanks(vs []float64) []float64 {
	n := len(vs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if vs[a] < vs[b] {
			return -1
		} else if vs[a] > vs[b] {
			return 1
		}
		return 0
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && vs[order[j+1]] == vs[order[i]] {
			j++
		}
		// [i,j]为并列区间
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// 把[0,n)的任务分发给有限数量的worker并等待完成
// 面板评估中，滚动算子按品种并行、截面算子按日期并行，任务之间没有共享可变状态
func ParallelFor(n int, fn func(i int)) {
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	ch := make(chan int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		ch <- i
	}
	close(ch)
	wg.Wait()
}
