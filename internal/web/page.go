package web

// Auction page. Field ids follow the contract's getAuctionDetails outputs.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Auction</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #222; }
  h1 { font-size: 1.4rem; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
  td { padding: .4rem .6rem; border-bottom: 1px solid #eee; }
  td:first-child { color: #777; width: 10rem; }
  td span { font-family: ui-monospace, monospace; word-break: break-all; }
  section { margin-bottom: 1rem; }
  input { padding: .35rem; width: 10rem; }
  button { padding: .4rem .8rem; margin: .2rem .2rem .2rem 0; cursor: pointer; }
  #status { min-height: 1.4rem; font-size: .9rem; color: #555; }
  #status.error { color: #b00020; }
</style>
</head>
<body>
<h1>Auction</h1>
<section><button id="connect">Connect Wallet</button></section>
<table>
  <tr><td>Owner</td><td><span id="owner">-</span></td></tr>
  <tr><td>Highest bidder</td><td><span id="highestBidder">-</span></td></tr>
  <tr><td>Highest bid</td><td><span id="highestBid">-</span></td></tr>
  <tr><td>Minimum bid</td><td><span id="minimumBid">-</span></td></tr>
  <tr><td>Ended</td><td><span id="auctionEnded">-</span></td></tr>
  <tr><td>Paused</td><td><span id="auctionPaused">-</span></td></tr>
</table>
<section>
  <input id="bidAmount" placeholder="Bid amount">
  <button data-action="bid" data-input="bidAmount" data-field="amount">Place Bid</button>
  <button data-action="withdraw">Withdraw</button>
</section>
<section>
  <button data-action="end">End Auction</button>
  <button data-action="pause">Pause</button>
  <button data-action="resume">Resume</button>
</section>
<section>
  <input id="newMinBid" placeholder="New minimum bid">
  <button data-action="reset" data-input="newMinBid" data-field="newMinimumBid">Reset Auction</button>
</section>
<div id="status"></div>
<script>
const fields = ["owner", "highestBidder", "highestBid", "minimumBid", "auctionEnded", "auctionPaused"];
const statusEl = document.getElementById("status");

function render(view) {
  for (const f of fields) {
    document.getElementById(f).innerText = view[f];
  }
}

function status(text, isError) {
  statusEl.textContent = text;
  statusEl.className = isError ? "error" : "";
}

async function post(action, body) {
  status(action + "...");
  const res = await fetch("/api/" + action, {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify(body || {}),
  });
  const data = await res.json();
  if (data.view) render(data.view);
  if (!res.ok) {
    if (res.status === 503) alert("No wallet provider available.");
    status(data.error, true);
    return;
  }
  status(data.tx ? action + " submitted: " + data.tx : action + " done");
}

document.getElementById("connect").addEventListener("click", () => post("connect"));
document.querySelectorAll("button[data-action]").forEach((btn) => {
  btn.addEventListener("click", () => {
    const body = {};
    if (btn.dataset.input) body[btn.dataset.field] = document.getElementById(btn.dataset.input).value;
    post(btn.dataset.action, body);
  });
});

const stream = new EventSource("/auction/stream");
stream.addEventListener("auction", (e) => render(JSON.parse(e.data)));
</script>
</body>
</html>
`
