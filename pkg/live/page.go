package live

import (
	"fmt"
	"html"
	"net/http"
)

// Page serves the minimal HTML+JS client for a Handler mounted at wsPath on
// the same host. The client applies patch frames by child-index path and
// reports click and input events with the path of their target node,
// delegating from the root so listener wiring never changes.
func Page(title, wsPath string) http.Handler {
	body := fmt.Sprintf(pageTemplate, html.EscapeString(title), wsPath)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	})
}

const pageTemplate = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<div id="loom-root"></div>
<script>
(function () {
  "use strict";
  var root = document.getElementById("loom-root");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "%s");

  function nodeAt(path) {
    var n = root.firstChild;
    for (var i = 0; i < path.length && n; i++) {
      n = n.childNodes[path[i]];
    }
    return n || null;
  }

  function materialize(html) {
    var t = document.createElement("template");
    t.innerHTML = html;
    return t.content.firstChild || document.createTextNode("");
  }

  function applyOp(p) {
    var n = nodeAt(p.path);
    switch (p.op) {
      case "Replace":
        if (p.path.length === 0) { root.innerHTML = p.html || ""; }
        else if (n) { n.replaceWith(materialize(p.html || "")); }
        break;
      case "UpdateText":
        if (n) { n.nodeValue = p.value || ""; }
        break;
      case "SetAttr":
        if (n) {
          n.setAttribute(p.name, p.value || "");
          if (p.name === "value" && "value" in n) { n.value = p.value || ""; }
        }
        break;
      case "RemoveAttr":
        if (n) { n.removeAttribute(p.name); }
        break;
      case "InsertChild":
        if (n) { n.insertBefore(materialize(p.html || ""), n.childNodes[p.index] || null); }
        break;
      case "RemoveChild":
        if (n && n.childNodes[p.index]) { n.removeChild(n.childNodes[p.index]); }
        break;
      // AddEvent / RemoveEvent need no client work: events are delegated.
    }
  }

  ws.onmessage = function (msg) {
    var f = JSON.parse(msg.data);
    if (f.t === "tree") {
      root.innerHTML = f.html;
    } else if (f.t === "patch") {
      (f.ops || []).forEach(applyOp);
    }
  };

  function pathOf(el) {
    var path = [];
    var n = el;
    while (n && n !== root.firstChild) {
      var parent = n.parentNode;
      if (!parent || n === root) { return null; }
      path.unshift(Array.prototype.indexOf.call(parent.childNodes, n));
      n = parent;
    }
    return n ? path : null;
  }

  function send(name, target, value) {
    var path = pathOf(target);
    if (path === null || ws.readyState !== WebSocket.OPEN) { return; }
    ws.send(JSON.stringify({ t: "event", path: path, name: name, value: value || "" }));
  }

  root.addEventListener("click", function (e) {
    send("click", e.target, "");
  });
  root.addEventListener("input", function (e) {
    send("input", e.target, e.target.value);
  });
  root.addEventListener("change", function (e) {
    send("change", e.target, e.target.value);
  });
  root.addEventListener("submit", function (e) {
    e.preventDefault();
    send("submit", e.target, "");
  });
})();
</script>
</body>
</html>
`
