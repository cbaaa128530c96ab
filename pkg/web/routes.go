package web

import (
	"github.com/emicklei/go-restful/v3"
)

// RegisterRoutes mounts the page at "/" as a web service so the container
// filters run for it too. Call it after api.RegisterOpenAPI to keep the page
// out of the OpenAPI document.
func RegisterRoutes(container *restful.Container, page *Page) {
	ws := new(restful.WebService)

	ws.
		Path("/").
		Produces("text/html", "*/*")

	ws.Route(ws.GET("/").To(page.handle).Doc("Search page"))
	ws.Route(ws.HEAD("/").To(page.handle).Doc("Search page"))

	container.Add(ws)
}

func (p *Page) handle(req *restful.Request, resp *restful.Response) {
	p.ServeHTTP(resp, req.Request)
}
