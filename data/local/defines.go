package local

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"strings"
	"time"
)

var LocalDataPath = ""

func Init(localDataPath string) {
	LocalDataPath = localDataPath
}

// 优先读取.zlib压缩文件，失败则读取原始文件
func LoadZipOrRawFile(path string) (*bytes.Buffer, error) {
	pathz := path + ".zlib"
	if f, err := os.Open(pathz); err == nil {
		defer f.Close()
		if zr, err := zlib.NewReader(f); err == nil {
			defer zr.Close()
			bf := &bytes.Buffer{}
			if _, err := io.Copy(bf, zr); err == nil {
				return bf, nil
			}
		}
	}

	if b, err := os.ReadFile(path); err == nil {
		return bytes.NewBuffer(b), nil
	} else {
		return nil, err
	}
}

// 获取一个目录下，以instId为命名的文件夹名
func GetInstIdsOfDir(dir string) []string {
	instIds := []string{}
	if des, err := os.ReadDir(dir); err == nil {
		for _, de := range des {
			if de.IsDir() && strings.Count(de.Name(), "_") > 0 {
				instIds = append(instIds, de.Name())
			}
		}
	}
	return instIds
}

// 假设一个目录中的文件，都是以日期格式排列的
// 那么这个函数返回日期范围
func GetTimeRangeOfDir(dir string) (t0, t1 time.Time, ok bool) {
	t0 = time.Time{}
	t1 = time.Time{}
	ok = false
	if des, err := os.ReadDir(dir); err == nil {
		for i := 0; i < len(des) && t0.IsZero(); i++ {
			if !des[i].IsDir() && len(des[i].Name()) >= 10 {
				dateStr := des[i].Name()[:10]
				if t, err := time.Parse(time.DateOnly, dateStr); err == nil {
					t0 = t
				}
			}
		}

		for i := len(des) - 1; i >= 0 && t1.IsZero(); i-- {
			if !des[i].IsDir() && len(des[i].Name()) >= 10 {
				dateStr := des[i].Name()[:10]
				if t, err := time.Parse(time.DateOnly, dateStr); err == nil {
					t1 = t.AddDate(0, 0, 1).Add(-time.Millisecond)
				}
			}
		}

		ok = !t0.IsZero() && !t1.IsZero()
	}

	return
}
