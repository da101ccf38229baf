package sink

import (
	"fmt"

	svg "github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

// Popup metrics.
const (
	popupWidth   = 280
	popupPad     = 12
	popupTitle   = 22
	popupRow     = 18
	popupValueX  = 118
	popupMaxCell = 26
)

const (
	popupCSS = `
    .popup { transition: opacity 0.15s ease; }
    .popup[visibility="hidden"] { opacity: 0; }
    .popup[visibility="visible"] { opacity: 1; }`

	// At most one popup is visible: opening one closes the previous.
	popupJS = `
    const svg = document.querySelector('svg');
    const vb = svg.viewBox.baseVal;
    let open = null;
    const close = () => { if (open) { open.setAttribute('visibility', 'hidden'); open = null; } };
    document.querySelectorAll('.node').forEach(el => {
      const popup = document.querySelector('.popup[data-for="' + CSS.escape(el.dataset.id) + '"]');
      if (!popup) return;
      el.addEventListener('mouseenter', () => {
        close();
        const box = el.getBBox();
        const pb = popup.getBBox();
        let x = box.x + box.width + 12;
        if (x + pb.width > vb.x + vb.width - 10) x = box.x - pb.width - 12;
        let y = box.y + box.height/2 - pb.height/2;
        x = Math.max(vb.x + 10, Math.min(x, vb.x + vb.width - pb.width - 10));
        y = Math.max(vb.y + 10, Math.min(y, vb.y + vb.height - pb.height - 10));
        popup.setAttribute('transform', 'translate(' + x.toFixed(1) + ',' + y.toFixed(1) + ')');
        popup.setAttribute('visibility', 'visible');
        open = popup;
      });
      el.addEventListener('mouseleave', () => { if (open === popup) close(); });
    });`
)

// drawPopupSVG writes the hidden detail card of n at the origin; the script
// moves it next to the node on hover.
func drawPopupSVG(canvas *svg.SVG, n *graph.Node) {
	details := analysis.Details(n.Metadata)
	h := popupPad*2 + popupTitle + len(details)*popupRow

	canvas.Group(`class="popup"`, attr("data-for", n.ID), `visibility="hidden"`)
	canvas.Roundrect(0, 0, popupWidth, h, 6, 6,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1;filter:drop-shadow(0 2px 4px rgba(0,0,0,0.15))", colorPanel, colorPanelRim))

	title := runewidth.Truncate(n.DisplayLabel(), popupMaxCell+8, "…")
	canvas.Text(popupPad, popupPad+14, title,
		fmt.Sprintf("font-family:%s;font-size:14px;font-weight:bold;fill:%s", fontFamily, colorInk))
	canvas.Text(popupWidth-popupPad, popupPad+14, string(n.Type),
		fmt.Sprintf("text-anchor:end;font-family:%s;font-size:11px;fill:%s", fontFamily, colorSubtle))

	for i, d := range details {
		y := popupPad + popupTitle + i*popupRow + 12
		canvas.Text(popupPad, y, d.Label,
			fmt.Sprintf("font-family:%s;font-size:12px;fill:%s", fontFamily, colorSubtle))
		canvas.Text(popupValueX, y, runewidth.Truncate(d.Value, popupMaxCell, "…"),
			fmt.Sprintf("font-family:%s;font-size:12px;fill:%s", fontFamily, colorInk))
	}
	canvas.Gend()
}
