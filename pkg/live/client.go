package live

// ClientScript mirrors the server document in the browser. It rebuilds the
// tree from the snapshot, applies each commit's ops by node ID and sends
// bound events back as event messages.
const ClientScript = `
<script>
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;
    var nodes = {};

    function send(msg) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(msg));
        }
    }

    function listen(el, id, name) {
        var handler = function(e) {
            var value = e.target && e.target.value !== undefined ? String(e.target.value) : '';
            send({type: 'event', node: id, event: name, value: value});
        };
        el.__didact = el.__didact || {};
        el.__didact[name] = handler;
        el.addEventListener(name, handler);
    }

    function unlisten(el, name) {
        if (el.__didact && el.__didact[name]) {
            el.removeEventListener(name, el.__didact[name]);
            delete el.__didact[name];
        }
    }

    function create(id, tag) {
        var el = tag ? document.createElement(tag) : document.createTextNode('');
        nodes[id] = el;
        return el;
    }

    function build(snap) {
        var el = create(snap.id, snap.tag);
        if (!snap.tag) {
            el.nodeValue = snap.text || '';
            return el;
        }
        var attrs = snap.attrs || {};
        Object.keys(attrs).forEach(function(k) { el.setAttribute(k, attrs[k]); });
        (snap.events || []).forEach(function(name) { listen(el, snap.id, name); });
        (snap.children || []).forEach(function(c) { el.appendChild(build(c)); });
        return el;
    }

    function apply(op) {
        var el = nodes[op.node];
        switch (op.op) {
            case 'create':
                create(op.node, op.tag);
                break;
            case 'text':
                if (el) el.nodeValue = op.value;
                break;
            case 'set':
                if (el) {
                    el.setAttribute(op.name, op.value);
                    if (op.name === 'value') el.value = op.value;
                }
                break;
            case 'remove-attr':
                if (el) el.removeAttribute(op.name);
                break;
            case 'listen':
                if (el) { unlisten(el, op.name); listen(el, op.node, op.name); }
                break;
            case 'unlisten':
                if (el) unlisten(el, op.name);
                break;
            case 'append':
                if (el && nodes[op.parent]) nodes[op.parent].appendChild(el);
                break;
            case 'remove':
                if (el && el.parentNode) el.parentNode.removeChild(el);
                break;
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'snapshot':
                    nodes = {};
                    var mount = document.getElementById('didact-mount');
                    mount.textContent = '';
                    mount.appendChild(build(msg.root));
                    break;
                case 'ops':
                    (msg.ops || []).forEach(apply);
                    break;
                case 'error':
                    console.error('[didact]', msg.error);
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
