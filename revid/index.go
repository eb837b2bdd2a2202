/*
DESCRIPTION
  index.go provides the index page embedding every stream, and the parsing
  of the still image routes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package revid

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/ausocean/camstream/device/still"
	"github.com/ausocean/camstream/filter"
)

var morphOps = []string{
	filter.OpOriginal,
	filter.OpEroded,
	filter.OpDilated,
	filter.OpTopHat,
	filter.OpBlackHat,
	filter.OpEnhanced,
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>camstream</title>
<style>
body { font-family: sans-serif; background: #111; color: #eee; }
.grid { display: flex; flex-wrap: wrap; gap: 12px; }
figure { margin: 0; }
img { max-width: 320px; border: 1px solid #444; }
</style>
</head>
<body>
<h1>Camera streams</h1>
<div class="grid">
{{range .Streams}}<figure><img src="/{{.Name}}_stream" alt="{{.Title}}"><figcaption>{{.Title}}</figcaption></figure>
{{end}}</div>
<h1>Morphology (kernel {{.Kernel}})</h1>
{{range $d := .Datasets}}<h2>{{$d}}</h2>
<div class="grid">
{{range $.Ops}}<figure><img src="/{{$d}}/{{.}}" alt="{{$d}} {{.}}"><figcaption>{{.}}</figcaption></figure>
{{end}}</div>
{{end}}</body>
</html>
`))

type indexStream struct {
	Name, Title string
}

func (r *Revid) handleIndex(w http.ResponseWriter, req *http.Request) {
	c := r.Config()
	data := struct {
		Streams  []indexStream
		Datasets []string
		Ops      []string
		Kernel   uint
	}{
		Datasets: still.NewStore(c).Names(),
		Ops:      morphOps,
		Kernel:   c.KernelSize,
	}
	for _, t := range transforms {
		data.Streams = append(data.Streams, indexStream{Name: t.name, Title: t.title})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(w, data)
	if err != nil {
		c.Logger.Error(pkg+"could not execute index template", "error", err.Error())
	}
}

// morphFilter returns the morphology filter for op with the kernel size
// given in kernel, or def if kernel is empty.
func morphFilter(op, kernel string, def int) (filter.Filter, error) {
	k := def
	if kernel != "" {
		v, err := strconv.Atoi(kernel)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", filter.ErrBadKernel, kernel)
		}
		k = v
	}

	f, err := filter.NewMorph(op, k)
	if err != nil {
		return nil, err
	}
	return f, nil
}
