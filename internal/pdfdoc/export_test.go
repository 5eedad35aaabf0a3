package pdfdoc

var WriteTestPDF = writeTestPDF
