package server

import (
	"github.com/gofiber/fiber/v3"
)

// TablePage handles GET /: a self-contained page that fetches the published
// rows once and sorts entirely client-side, with a hover preview panel and a
// live quota header.
func (s *Server) TablePage(c fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(tablePageHTML)
}

const tablePageHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>YouTube Hot Finder</title>
<style>
:root { --bg:#fff; --fg:#0f172a; --muted:#475569; --border:#e5e7eb; --thead-bg:#f3f4f6; --row-hover:#f8fafc; }
@media (prefers-color-scheme: dark){ :root{ --bg:#0b1020; --fg:#f8fafc; --muted:#cbd5e1; --border:#334155; --thead-bg:#1f2937; --row-hover:#111827; } }
html,body{background:var(--bg);color:var(--fg);font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial;margin:12px;}
#quota{font-size:13px;color:var(--muted);margin-bottom:10px;}
.container{display:grid;grid-template-columns:84% 16%;gap:12px;height:640px;}
.table-wrap{border:1px solid var(--border);border-radius:10px;overflow:auto;}
table{width:100%;border-collapse:collapse;table-layout:fixed;}
th,td{border-bottom:1px solid var(--border);padding:6px 8px;font-size:12px;text-align:left;}
th{position:sticky;top:0;background:var(--thead-bg);cursor:pointer;user-select:none;z-index:2;}
tr:hover td{background:var(--row-hover);}
td.title{white-space:normal;word-break:break-word;}
td:not(.title){white-space:nowrap;overflow:hidden;text-overflow:ellipsis;}
.preview{border:1px solid var(--border);border-radius:10px;padding:8px;}
.preview img{width:100%;border-radius:6px;border:1px solid var(--border);}
.preview .t{font-weight:700;margin:6px 0 4px 0;font-size:12px;}
.preview .m{font-size:11px;color:var(--muted);}
.preview a{color:inherit;font-size:12px;}
.caret{opacity:.6;margin-left:4px;}
</style>
</head>
<body>
<h2>&#128293; YouTube Hot Finder</h2>
<div id="quota">loading quota&hellip;</div>
<div class="container">
  <div class="table-wrap"><table id="tbl"><thead></thead><tbody></tbody></table></div>
  <div class="preview" id="pv"></div>
</div>
<script>
(function(){
  const columns = [
    {key:'title',label:'Video Title',cls:'title'},
    {key:'channel',label:'Channel'},
    {key:'uploaded',label:'Uploaded',sortKey:'uploaded_ts'},
    {key:'views',label:'Views',num:true},
    {key:'vph',label:'Views/hr',num:true},
    {key:'subs',label:'Subscribers',num:true},
    {key:'vs',label:'Views/Subs',num:true},
    {key:'duration',label:'Duration',sortKey:'duration_sec'},
  ];
  const fmtInt = n => (n==null||isNaN(n)) ? '' : Number(n).toLocaleString();
  const fmtNum = n => (n==null||isNaN(n)) ? '' : (Math.round(n*100)/100).toLocaleString();
  let rows = [], sortKey = 'vph', sortDir = -1;
  const thead = document.querySelector('#tbl thead');
  const tbody = document.querySelector('#tbl tbody');
  const pv = document.getElementById('pv');

  function sortRows(){
    rows.sort((a,b)=>{
      const col = columns.find(c=>c.key===sortKey)||{};
      const k = col.sortKey||col.key;
      let av=a[k], bv=b[k];
      if(av==null) av=-Infinity; if(bv==null) bv=-Infinity;
      if(typeof av==='string' && typeof bv==='string') return sortDir*av.localeCompare(bv);
      return sortDir*((+av)-(+bv));
    });
  }
  function esc(s){ return (s==null?'':String(s)).replace(/[&<>"']/g,m=>({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[m])); }
  function preview(r){
    pv.innerHTML = '<img src="'+esc(r.thumb)+'"><div class="t">'+esc(r.title)+'</div>'
      + '<div class="m">'+esc(r.channel)+' &middot; '+esc(r.uploaded)+'<br>Views: '+fmtInt(r.views)
      + ' &middot; VPH: '+fmtNum(r.vph)+' &middot; Subs: '+fmtInt(r.subs)+'</div>'
      + '<div><a href="'+esc(r.url)+'" target="_blank" rel="noreferrer">&#9654; Open on YouTube</a></div>';
  }
  function renderHead(){
    thead.innerHTML = '<tr>'+columns.map(c=>'<th data-k="'+c.key+'">'+c.label
      +'<span class="caret">'+(sortKey===c.key?(sortDir===-1?'&#9660;':'&#9650;'):'')+'</span></th>').join('')+'</tr>';
    thead.querySelectorAll('th').forEach(th=>th.addEventListener('click',()=>{
      const k = th.getAttribute('data-k');
      if(sortKey===k){ sortDir*=-1; } else { sortKey=k; sortDir=-1; }
      sortRows(); renderHead(); renderBody();
    }));
  }
  function renderBody(){
    tbody.innerHTML = rows.map((r,i)=>'<tr data-i="'+i+'">'
      + '<td class="title">'+esc(r.title)+'</td><td>'+esc(r.channel)+'</td>'
      + '<td>'+esc(r.uploaded)+'</td><td>'+fmtInt(r.views)+'</td><td>'+fmtNum(r.vph)+'</td>'
      + '<td>'+fmtInt(r.subs)+'</td><td>'+(r.vs==null?'':fmtNum(r.vs))+'</td><td>'+esc(r.duration)+'</td>'
      + '</tr>').join('');
    tbody.querySelectorAll('tr').forEach(tr=>tr.addEventListener('mouseenter',
      ()=>preview(rows[+tr.getAttribute('data-i')]), {passive:true}));
  }
  function renderQuota(q){
    let txt = 'Quota: '+fmtInt(q.units)+' / '+fmtInt(q.budget)+' units used ('+fmtInt(q.remaining)+' left)';
    if(q.wait) txt += ' &mdash; waiting '+q.wait.remaining_sec+'s ('+esc(q.wait.reason)+')';
    if(q.running) txt += ' &mdash; run in progress: '+esc(q.phase);
    document.getElementById('quota').innerHTML = txt;
  }
  fetch('/api/results').then(r=>r.json()).then(d=>{
    rows = d.rows||[]; sortRows(); renderHead(); renderBody();
    if(rows.length) preview(rows[0]);
  });
  function pollQuota(){ fetch('/api/quota').then(r=>r.json()).then(renderQuota).catch(()=>{}); }
  pollQuota(); setInterval(pollQuota, 2000);
})();
</script>
</body>
</html>
`
