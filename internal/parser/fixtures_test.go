package parser

// Pages below follow the markup cgit emits, trimmed to the parts the
// extractors read.

const indexPage = `<!DOCTYPE html>
<html><head><title>Example Git</title></head><body>
<div class='content'>
<table summary='repository list' class='list nowrap'>
<tr class='nohover'><th class='left'><a href='/?s=name'>Name</a></th><th class='left'><a href='/?s=desc'>Description</a></th><th class='left'><a href='/?s=owner'>Owner</a></th><th class='left'><a href='/?s=idle'>Idle</a></th><th class='left'>Links</th></tr>
<tr class='nohover-highlight'><td colspan='5' class='reposection'>Tools</td></tr>
<tr><td class='sublevel-repo'><a title='tools/cgit' href='/tools/cgit/'>cgit</a></td><td><a href='/tools/cgit/'>A hyperfast web frontend</a></td><td><a href='/?q=Jason'>Jason</a></td><td><span class='age-months' title='2024-10-01 10:00:00 +0000'>3 months</span></td><td><a class='button' href='/tools/cgit/'>summary</a></td></tr>
<tr><td class='sublevel-repo'><a title='tools/misc' href='/tools/misc/'>misc</a></td><td><a href='/tools/misc/'>[no description]</a></td><td></td><td><span class='age-days'>2 days</span></td><td></td></tr>
<tr class='nohover-highlight'><td colspan='5' class='reposection'>Libraries</td></tr>
<tr><td class='sublevel-repo'><a href='/libs/zlib.git/'>zlib.git</a></td><td><a href='/libs/zlib.git/'>Compression library</a></td><td></td><td><span class='age-years' title='2023-01-01 00:00:00 +0000'>2 years</span></td><td></td></tr>
<tr><td class='sublevel-repo'><a href=''>broken</a></td><td></td><td></td><td></td><td></td></tr>
</table>
</div></body></html>`

const logPage = `<!DOCTYPE html>
<html><head><title>repo - log</title></head><body>
<div class='content'>
<table class='list nowrap'>
<tr class='nohover'><th class='left'>Age</th><th class='left'>Commit message</th><th class='left'>Author</th><th class='left'>Files</th><th class='left'>Lines</th></tr>
<tr><td><span class='age-hours' title='2024-12-31 10:00:00 +0000'>26 hours</span></td><td><a href='/repo/commit/?id=0123456789abcdef0123456789abcdef01234567'>Fix the thing</a><span class='decoration'><a class='branch-deco' href='/repo/log/?h=master'>master</a><a class='tag-deco' href='/repo/tag/?h=v1.0'>v1.0</a></span></td><td>Jane Doe</td><td>2</td><td><span class='deletions'>-1</span>/<span class='insertions'>+3</span></td></tr>
<tr><td><span class='age-days'>3 days</span></td><td><a href='/repo/commit/?id=fedcba9876543210fedcba9876543210fedcba98&amp;h=master'>Add feature</a></td><td>John Roe</td><td>1</td><td>-0/+10</td></tr>
<tr class='nohover'><td></td><td class='logmsg'>Longer explanation
of the feature.</td><td></td><td></td><td></td></tr>
<tr><td></td><td><a href='/repo/commit/?id=aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa'>Undated</a></td><td>Ann</td><td>1</td><td>-1/+1</td></tr>
<tr><td colspan='5'><a href='/repo/log/?ofs=50'>[...]</a></td></tr>
</table>
<ul class='pager'><li><a href='/repo/log/?ofs=50'>[next]</a></li></ul>
</div></body></html>`

const treePage = `<!DOCTYPE html>
<html><head><title>repo - tree</title></head><body>
<div class='path'>path: <a href='/repo/tree/'>root</a>/<a href='/repo/tree/src'>src</a></div>
<div class='content'>
<table summary='tree listing' class='list'>
<tr class='nohover'><th class='left'>Mode</th><th class='left'>Name</th><th class='right'>Size</th><th/></tr>
<tr><td class='ls-mode'>d---------</td><td><a class='ls-dir' href='/repo/tree/src/lib'>lib</a></td><td class='ls-size'></td><td><a class='button' href='/repo/log/src/lib'>log</a></td></tr>
<tr><td class='ls-mode'>-rw-r--r--</td><td><a class='ls-blob c' href='/repo/tree/src/main.c'>main.c</a></td><td class='ls-size'>1234</td><td></td></tr>
<tr><td class='ls-mode'>-rw-r--r--</td><td><a class='ls-blob' href='/repo/tree/src/empty'>empty</a></td><td class='ls-size'></td><td></td></tr>
<tr><td class='ls-mode'>m---------</td><td><a class='ls-mod' href='https://example.com/vendor.git'>vendor</a></td><td class='ls-size'></td><td></td></tr>
<tr><td class='ls-mode'>lrwxrwxrwx</td><td><a href='/repo/tree/src/current'>current</a></td><td class='ls-size'>7</td><td></td></tr>
</table>
</div></body></html>`

const refsPage = `<!DOCTYPE html>
<html><head><title>repo - refs</title></head><body>
<div class='content'>
<table class='list nowrap'>
<tr class='nohover'><th class='left'>Branch</th><th class='left'>Commit message</th><th class='left'>Author</th><th class='left' colspan='2'>Age</th></tr>
<tr><td><a href='/repo/log/?h=master'>master</a></td><td><a href='/repo/commit/?id=1111111111111111111111111111111111111111'>Latest change</a></td><td>Jane Doe</td><td colspan='2'><span class='age-days' title='2024-12-30 12:00:00 +0000'>2 days</span></td></tr>
<tr><td><a href='/repo/log/?h=dev'>dev</a></td><td><a href='/repo/commit/?id=2222222222222222222222222222222222222222'>Work in progress</a></td><td>John Roe</td><td colspan='2'><span class='age-weeks'>3 weeks</span></td></tr>
<tr class='nohover'><td colspan='5'>&nbsp;</td></tr>
<tr class='nohover'><th class='left'>Tag</th><th class='left'>Download</th><th class='left'>Author</th><th class='left' colspan='2'>Age</th></tr>
<tr><td><a href='/repo/tag/?h=v1.0'>v1.0</a></td><td><a href='/repo/commit/?id=3333333333333333333333333333333333333333'>commit 3333333333...</a></td><td>Jane Doe</td><td colspan='2'><span class='age-months' title='2024-06-01 08:00:00 +0000'>7 months</span></td></tr>
<tr><td><a href='/repo/tag/?h=v0.9'>v0.9</a></td><td><a href='/repo/snapshot/repo-0.9.tar.gz'>repo-0.9.tar.gz</a></td><td>Jane Doe</td><td colspan='2'></td></tr>
</table>
</div></body></html>`

const commitPage = `<!DOCTYPE html>
<html><head><title>repo - Fix the parser</title></head><body>
<div class='content'>
<table summary='commit info' class='commit-info'>
<tr><th>author</th><td>Jane Doe &lt;jane@example.com&gt;</td><td class='right'>2024-12-31 10:00:00 +0000</td></tr>
<tr><th>committer</th><td>John Roe &lt;john@example.com&gt;</td><td class='right'>2024-12-31 11:00:00 +0000</td></tr>
<tr><th>commit</th><td colspan='2' class='sha1'><a href='/repo/commit/?id=1111111111111111111111111111111111111111'>1111111111111111111111111111111111111111</a> (<a href='/repo/patch/?id=1111111111111111111111111111111111111111'>patch</a>)</td></tr>
<tr><th>tree</th><td colspan='2' class='sha1'><a href='/repo/tree/?id=2222222222222222222222222222222222222222'>2222222222222222222222222222222222222222</a></td></tr>
<tr><th>parent</th><td colspan='2' class='sha1'><a href='/repo/commit/?id=3333333333333333333333333333333333333333'>3333333333333333333333333333333333333333</a> (<a href='/repo/diff/?id=1111111111111111111111111111111111111111&amp;id2=3333333333333333333333333333333333333333'>diff</a>)</td></tr>
</table>
<div class='commit-subject'>Fix the parser<span class='decoration'><a class='branch-deco' href='/repo/log/?h=master'>master</a></span></div>
<div class='commit-msg'>Fix the parser

Handle empty rows.

Change-Id: I0123456789abcdef</div>
<table summary='diffstat' class='diffstat'>
<tr><td class='mode'>-rw-r--r--</td><td class='upd'><a href='/repo/diff/src/parser.c?id=1111111111111111111111111111111111111111'>src/parser.c</a></td><td class='right'>3</td><td class='graph'><table summary='file diffstat' width='100%'><tr><td class='add' style='width: 66.7%;'></td><td class='rem' style='width: 33.3%;'></td><td class='none' style='width: 0.0%;'></td></tr></table></td></tr>
<tr><td class='mode'>-rw-r--r--</td><td class='add'><a href='/repo/diff/docs/NEW.md?id=1111111111111111111111111111111111111111'>docs/NEW.md</a></td><td class='right'>1</td><td class='graph'><table summary='file diffstat' width='100%'><tr><td class='add' style='width: 100.0%;'></td><td class='rem' style='width: 0.0%;'></td><td class='none' style='width: 0.0%;'></td></tr></table></td></tr>
</table>
<div class='diffstat-summary'>2 files changed, 3 insertions, 1 deletion</div>
<table summary='diff' class='diff'>
<tr><td><div class='head'>diff --git a/src/parser.c b/src/parser.c<br/>index 1234567..89abcde 100644<br/>--- a/<a href='/repo/tree/src/parser.c?id=3333333333333333333333333333333333333333'>src/parser.c</a><br/>+++ b/<a href='/repo/tree/src/parser.c?id=1111111111111111111111111111111111111111'>src/parser.c</a></div><div class='hunk'>@@ -1,3 +1,4 @@ int main()</div><div class='ctx'> int a;</div><div class='del'>-int b;</div><div class='add'>+int b = 0;</div><div class='add'>+int c;</div><div class='ctx'> return;</div><div class='head'>diff --git a/docs/NEW.md b/docs/NEW.md<br/>new file mode 100644<br/>index 0000000..1111111<br/>--- /dev/null<br/>+++ b/<a href='/repo/tree/docs/NEW.md'>docs/NEW.md</a></div><div class='hunk'>@@ -0,0 +1 @@</div><div class='add'>+hello</div></td></tr>
</table>
</div></body></html>`

const summaryPage = `<!DOCTYPE html>
<html><head><title>cgit - A hyperfast web frontend</title>
<link rel='vcs-git' href='https://git.example.com/cgit' title='cgit Git repository'/>
</head><body>
<table id='header'>
<tr><td class='logo' rowspan='2'><a href='/'><img src='/cgit.png' alt='cgit logo'/></a></td><td class='main'><a href='/'>index</a> : <a title='cgit' href='/cgit/'>cgit</a></td><td class='form'></td></tr>
<tr><td class='sub'>A hyperfast web frontend for git repositories</td><td class='sub right'>Jason</td></tr>
</table>
<div class='content'>
<table summary='repository info' class='list nowrap'>
<tr class='nohover'><th class='left'>Branch</th><th class='left'>Commit message</th><th class='left'>Author</th><th class='left' colspan='2'>Age</th></tr>
<tr><td><a href='/cgit/log/'>master</a></td><td><a href='/cgit/commit/?id=aaaabbbbccccddddeeeeffff0000111122223333'>Latest change</a></td><td>Jane Doe</td><td colspan='2'><span class='age-days' title='2024-12-30 12:00:00 +0000'>2 days</span></td></tr>
<tr><td><a href='/cgit/log/?h=dev'>dev</a></td><td><a href='/cgit/commit/?id=4444444444444444444444444444444444444444'>Experiment</a></td><td>John Roe</td><td colspan='2'><span class='age-weeks'>2 weeks</span></td></tr>
<tr class='nohover'><td colspan='5'>&nbsp;</td></tr>
<tr class='nohover'><th class='left'>Tag</th><th class='left'>Download</th><th class='left'>Author</th><th class='left' colspan='2'>Age</th></tr>
<tr><td><a href='/cgit/tag/?h=v1.2'>v1.2</a></td><td><a href='/cgit/commit/?id=5555555555555555555555555555555555555555'>commit 5555555555...</a></td><td>Jane Doe</td><td colspan='2'><span class='age-months' title='2024-06-01 00:00:00 +0000'>7 months</span></td></tr>
<tr class='nohover'><td colspan='5'>&nbsp;</td></tr>
<tr class='nohover'><th class='left'>Age</th><th class='left'>Commit message</th><th class='left'>Author</th><th class='left'>Files</th><th class='left'>Lines</th></tr>
<tr><td><span class='age-days' title='2024-12-30 12:00:00 +0000'>2 days</span></td><td><a href='/cgit/commit/?id=aaaabbbbccccddddeeeeffff0000111122223333'>Latest change</a></td><td>Jane Doe</td><td>1</td><td>-0/+1</td></tr>
<tr class='nohover'><td colspan='5'>&nbsp;</td></tr>
<tr class='nohover'><th class='left' colspan='5'>Clone</th></tr>
<tr><td colspan='5'><a rel='vcs-git' href='https://git.example.com/cgit' title='cgit Git repository'>https://git.example.com/cgit</a></td></tr>
<tr><td colspan='5'><a rel='vcs-git' href='git://git.example.com/cgit' title='cgit Git repository'>git://git.example.com/cgit</a></td></tr>
<tr><td colspan='5'><a rel='vcs-git' href='ssh://git@git.example.com/cgit' title='cgit Git repository'>ssh://git@git.example.com/cgit</a></td></tr>
</table>
</div></body></html>`

const aboutPage = `<!DOCTYPE html>
<html><head><title>repo - about</title></head><body>
<div class='content'>
<div id='summary'><h1>Title</h1><script>alert('x')</script><style>p { color: red; }</style><p>See <a href='docs/guide.md'>the guide</a> and <a href='#install'>install</a>.</p><img src='/logo.png' onerror='steal()'/></div>
</div></body></html>`

const blobPage = `<!DOCTYPE html>
<html><head><title>repo - main.c</title></head><body>
<div class='path'>path: <a href='/repo/tree/'>root</a>/<a href='/repo/tree/src'>src</a>/<a href='/repo/tree/src/main.c'>main.c</a></div>
<div class='content'>
<table summary='blob content' class='blob'>
<tr><td class='linenumbers'><pre><a id='n1' href='#n1'>1</a>
<a id='n2' href='#n2'>2</a>
</pre></td><td class='lines'><pre><code>int main() {
}
</code></pre></td></tr>
</table>
</div></body></html>`
